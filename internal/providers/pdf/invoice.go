package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	m := newDocument()
	writeHeader(m, "Invoice", doc)
	writeLines(m, doc)
	writeTotals(m, doc, "Amount due")
	return generate(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func writeHeader(m core.Maroto, title string, doc InvoiceDocument) {
	m.AddRow(12,
		text.NewCol(8, title, props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, doc.PlatformName, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	meta := col.New(6).Add(
		text.New("Invoice number: "+doc.InvoiceNumber, props.Text{Top: 0}),
		text.New("Date of issue: "+doc.IssueDate, props.Text{Top: 4}),
		text.New("Date due: "+doc.DueDate, props.Text{Top: 8}),
	)
	if doc.PaidDate != "" {
		meta.Add(text.New("Date paid: "+doc.PaidDate, props.Text{Top: 12}))
	}
	m.AddRow(20, meta, col.New(6))

	m.AddRow(30,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BillToName, props.Text{Top: 5}),
			text.New(doc.BillToEmail, props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("Event", props.Text{Style: fontstyle.Bold}),
			text.New(doc.EventName, props.Text{Top: 5}),
			text.New(doc.EventDates, props.Text{Top: 9}),
			text.New(doc.Venue, props.Text{Top: 13}),
			text.New("Order "+doc.OrderNumber, props.Text{Top: 17}),
		),
	)
}

func writeLines(m core.Maroto, doc InvoiceDocument) {
	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Volume (m3)", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range doc.Lines {
		m.AddRow(8,
			text.NewCol(8, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Volume, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(4, line.NewCol(12))
}

func writeTotals(m core.Maroto, doc InvoiceDocument, finalLabel string) {
	totalRow := func(label, value string, style fontstyle.Type) {
		m.AddRow(8,
			col.New(7),
			text.NewCol(3, label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
	totalRow("Logistics service", doc.Subtotal, fontstyle.Normal)
	if doc.Margin != "" {
		totalRow(doc.MarginLabel, doc.Margin, fontstyle.Normal)
	}
	totalRow(doc.TaxLabel, doc.TaxAmount, fontstyle.Normal)
	totalRow(finalLabel, doc.Currency+" "+doc.Total, fontstyle.Bold)
}

func generate(m core.Maroto) ([]byte, error) {
	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}
