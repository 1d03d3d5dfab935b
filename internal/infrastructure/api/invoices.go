package api

import (
	"context"
	"net/http"

	"github.com/optica/admin/internal/domain/invoice"
	"github.com/optica/admin/internal/domain/settings"
)

// CreateInvoice submits an invoice
func (c *Client) CreateInvoice(ctx context.Context, sub invoice.Submission) (invoice.Created, error) {
	var created invoice.Created
	env, err := c.sendJSON(ctx, http.MethodPost, "/admin/invoices/create", sub)
	if err != nil {
		return created, err
	}
	err = decodeObject(env.Data, &created, "invoice", "data")
	return created, err
}

// InvoiceSettings returns the invoice numbering settings
func (c *Client) InvoiceSettings(ctx context.Context) (settings.InvoiceSettings, error) {
	var s settings.InvoiceSettings
	env, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/settings/invoice"})
	if err != nil {
		return s, err
	}
	err = decodeObject(env.Data, &s, "data")
	return s, err
}

// SaveInvoiceSettings stores the invoice numbering settings
func (c *Client) SaveInvoiceSettings(ctx context.Context, s settings.InvoiceSettings) error {
	_, err := c.sendJSON(ctx, http.MethodPost, "/admin/settings/invoice/create", s)
	return err
}
