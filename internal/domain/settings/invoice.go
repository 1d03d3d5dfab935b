// Package settings holds shop-wide configuration kept on the server.
package settings

import "github.com/optica/admin/internal/domain/shared"

// InvoiceSettings controls invoice numbering and the tax authority
// sandbox integration.
type InvoiceSettings struct {
	Prefix       string      `json:"default_invoice_prefix" validate:"max=20"`
	Index        shared.Text `json:"default_invoice_index" validate:"omitempty,numeric"`
	SandboxURL   string      `json:"sandbox_url" validate:"omitempty,url"`
	SandboxToken string      `json:"sandbox_security_token"`
	BPOSID       shared.Text `json:"bposid"`
	InvoiceType  shared.Text `json:"invoice_type"`
	SaleType     shared.Text `json:"sale_type"`
}

// NextNumber formats the invoice number the next invoice would receive
func (s InvoiceSettings) NextNumber() string {
	return s.Prefix + s.Index.String()
}
