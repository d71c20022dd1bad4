package pdf

import (
	"context"
	"errors"

	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrNotPaid = errors.New("pdf: receipt requires a paid date")

func (p *MarotoProvider) RenderReceipt(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	if doc.PaidDate == "" {
		return nil, ErrNotPaid
	}
	m := newDocument()
	writeHeader(m, "Receipt", doc)
	writeLines(m, doc)
	writeTotals(m, doc, "Amount paid")
	m.AddRow(12,
		text.NewCol(12, "Paid in full on "+doc.PaidDate+". Thank you.", props.Text{
			Top:   4,
			Size:  10,
			Style: fontstyle.Italic,
			Align: align.Center,
		}),
	)
	return generate(m)
}
