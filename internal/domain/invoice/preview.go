package invoice

import "time"

// Preview is the printable summary of a submitted invoice
type Preview struct {
	ID            int
	InvoiceNumber string
	IssuedAt      time.Time
	Customer      Customer
	Items         []LineItem
	Totals        Totals
	PayMode       PayMode
	Notes         string
}

// Preview captures the draft as submitted under created
func (d *Draft) Preview(created Created, issuedAt time.Time) Preview {
	return d.Snapshot().Issued(created, issuedAt)
}

// Snapshot copies the draft into a preview that has no invoice number yet
func (d *Draft) Snapshot() Preview {
	var c Customer
	if d.customer != nil {
		c = *d.customer
	}
	return Preview{
		Customer: c,
		Items:    d.Items(),
		Totals:   d.Totals(),
		PayMode:  d.payMode,
		Notes:    d.notes,
	}
}

// Issued stamps the preview with the stored invoice
func (p Preview) Issued(created Created, issuedAt time.Time) Preview {
	p.ID = created.ID
	p.InvoiceNumber = created.InvoiceNumber.String()
	p.IssuedAt = issuedAt
	return p
}
