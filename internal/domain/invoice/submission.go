package invoice

import (
	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a submitted invoice
type CartItem struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Submission is the create-invoice request body
type Submission struct {
	CustomerID int             `json:"customer_id"`
	SalesmanID int             `json:"salesman_id"`
	Discount   decimal.Decimal `json:"discount"`
	Notes      string          `json:"notes"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PayMode    PayMode         `json:"pay_mode"`
	CartItems  []CartItem      `json:"cart_items"`
}

// Created is what the server returns for a stored invoice
type Created struct {
	ID            int         `json:"id"`
	InvoiceNumber shared.Text `json:"invoice_number"`
}

// Submission validates the draft and builds the request body
func (d *Draft) Submission(salesmanID int) (Submission, error) {
	if err := d.Validate(); err != nil {
		return Submission{}, err
	}
	items := make([]CartItem, 0, len(d.items))
	for _, it := range d.items {
		items = append(items, CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}
	return Submission{
		CustomerID: d.customer.ID,
		SalesmanID: salesmanID,
		Discount:   d.discount,
		Notes:      d.notes,
		PaidAmount: d.paid,
		PayMode:    d.payMode,
		CartItems:  items,
	}, nil
}
