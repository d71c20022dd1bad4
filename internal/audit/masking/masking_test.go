package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataMasksCredentials(t *testing.T) {
	out := Metadata(map[string]any{
		"reset_token":  "9f8e7d6c5b4a3210",
		"new_password": "hunter2",
		"email":        "jane@acme.test",
		"order_number": "ORD-2026-0042",
		"quantity":     3,
		"nested": map[string]any{
			"refresh_token": "abcdefghijkl",
			"status":        "CONFIRMED",
		},
		" ": "dropped",
	})

	assert.Equal(t, "****3210", out["reset_token"])
	assert.Equal(t, "****", out["new_password"])
	assert.Equal(t, "j****@acme.test", out["email"])
	assert.Equal(t, "ORD-2026-0042", out["order_number"])
	assert.Equal(t, 3, out["quantity"])
	assert.Equal(t, map[string]any{"refresh_token": "****ijkl", "status": "CONFIRMED"}, out["nested"])
	assert.NotContains(t, out, " ")
}

func TestMetadataEmpty(t *testing.T) {
	assert.Nil(t, Metadata(nil))
	assert.Nil(t, Metadata(map[string]any{"": "x"}))
}

func TestMaskEmailFallsBackToSecret(t *testing.T) {
	assert.Equal(t, "****", MaskEmail("not-an-email"))
}
