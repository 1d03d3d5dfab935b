package printing

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/optica/admin/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

//go:embed templates/invoice.html
var templateFS embed.FS

// AmountFormat renders a money value for display
type AmountFormat func(decimal.Decimal) string

// FixedAmount prints two decimals without a currency symbol
func FixedAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// InvoiceTemplate renders an invoice preview to a standalone HTML document
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the embedded template. A nil format uses
// FixedAmount.
func NewInvoiceTemplate(format AmountFormat) (*InvoiceTemplate, error) {
	if format == nil {
		format = FixedAmount
	}
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return format(d) },
		"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
		"add":   func(a, b int) int { return a + b },
	}
	tmpl, err := template.New("invoice.html").Funcs(funcs).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "parsing invoice template", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render executes the template for p
func (t *InvoiceTemplate) Render(p invoice.Preview) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, p); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "rendering invoice "+p.InvoiceNumber, err)
	}
	return buf.String(), nil
}
