package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed *.html
var files embed.FS

type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type texts struct {
	subject string
	text    string
}

var catalogue = map[string]texts{
	"PASSWORD_RESET": {
		subject: "Reset your password",
		text:    "Password reset requested for {{.email}}",
	},
	"ORDER_STATUS_CHANGED": {
		subject: "Order {{.order_number}} is now {{.to_status}}",
		text:    "Order {{.order_number}} ({{.event_name}}) {{.from_status}} -> {{.to_status}}{{with .note}}: {{.}}{{end}}",
	},
	"INVOICE_ISSUED": {
		subject: "Invoice {{.invoice_number}} issued",
		text:    "Invoice {{.invoice_number}} issued for order {{.order_number}}: {{.currency}} {{.total}} due {{.due_date}}",
	},
	"INVOICE_OVERDUE": {
		subject: "Invoice {{.invoice_number}} is overdue",
		text:    "Invoice {{.invoice_number}} ({{.currency}} {{.total}}) is overdue since {{.due_date}}",
	},
}

// Known reports whether kind has a template.
func Known(kind string) bool {
	_, ok := catalogue[kind]
	return ok
}

func Render(kind string, data map[string]any) (Rendered, error) {
	entry, ok := catalogue[kind]
	if !ok {
		return Rendered{}, fmt.Errorf("templates: unknown kind %q", kind)
	}

	subject, err := renderText(kind+".subject", entry.subject, data)
	if err != nil {
		return Rendered{}, err
	}
	text, err := renderText(kind+".text", entry.text, data)
	if err != nil {
		return Rendered{}, err
	}

	tmpl, err := htmltemplate.ParseFS(files, "layout.html", kind+".html")
	if err != nil {
		return Rendered{}, fmt.Errorf("templates: parse %s: %w", kind, err)
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return Rendered{}, fmt.Errorf("templates: execute %s: %w", kind, err)
	}

	return Rendered{Subject: subject, HTML: body.String(), Text: text}, nil
}

func renderText(name, source string, data map[string]any) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(source)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}
