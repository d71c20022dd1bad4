package pdf

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	RenderReceipt(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// InvoiceDocument is the print model of an invoice. Amounts are preformatted.
type InvoiceDocument struct {
	PlatformName  string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	PaidDate      string

	BillToName  string
	BillToEmail string

	OrderNumber string
	EventName   string
	EventDates  string
	Venue       string

	Lines []InvoiceLine

	Currency    string
	Subtotal    string
	MarginLabel string
	Margin      string
	TaxLabel    string
	TaxAmount   string
	Total       string
}

type InvoiceLine struct {
	Description string
	Qty         int
	Volume      string
}
