package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderStatusChanged(t *testing.T) {
	out, err := Render("ORDER_STATUS_CHANGED", map[string]any{
		"order_number": "ORD-7",
		"event_name":   "Expo <2026>",
		"from_status":  "PRICING_REVIEW",
		"to_status":    "QUOTED",
		"final_price":  "1312.50",
		"currency":     "AED",
	})
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-7 is now QUOTED", out.Subject)
	assert.Contains(t, out.HTML, "Expo &lt;2026&gt;")
	assert.Contains(t, out.HTML, "Quoted total: AED 1312.50")
	assert.Equal(t, "Order ORD-7 (Expo <2026>) PRICING_REVIEW -> QUOTED", out.Text)
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render("NOPE", nil)
	assert.Error(t, err)
	assert.False(t, Known("NOPE"))
	assert.True(t, Known("PASSWORD_RESET"))
}
