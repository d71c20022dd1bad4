package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() InvoiceDocument {
	return InvoiceDocument{
		PlatformName:  "Eventory",
		InvoiceNumber: "INV-202603-00001",
		IssueDate:     "2026-03-01",
		DueDate:       "2026-03-31",
		BillToName:    "Acme Events",
		OrderNumber:   "ORD-1",
		EventName:     "Expo",
		Lines:         []InvoiceLine{{Description: "Stage riser", Qty: 4, Volume: "2.400"}},
		Currency:      "AED",
		Subtotal:      "1000.00",
		MarginLabel:   "Service margin (25%)",
		Margin:        "250.00",
		TaxLabel:      "VAT (5%)",
		TaxAmount:     "62.50",
		Total:         "1312.50",
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	out, err := New().RenderInvoice(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderReceiptRequiresPaidDate(t *testing.T) {
	provider := New()
	_, err := provider.RenderReceipt(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, ErrNotPaid)

	doc := sampleDocument()
	doc.PaidDate = "2026-03-10"
	out, err := provider.RenderReceipt(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
