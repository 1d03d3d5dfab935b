// Package invoice holds the invoice draft edited before submission and the
// derivation of its totals.
package invoice

import (
	"strings"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the tax percentage applied to every new line item
var DefaultTaxRate = decimal.NewFromInt(15)

var hundred = decimal.NewFromInt(100)

// LineItem is one product on the draft
type LineItem struct {
	ProductID int
	Name      string
	ItemCode  string
	UnitPrice decimal.Decimal
	Quantity  int
	TaxRate   decimal.Decimal // percent
}

// Subtotal returns UnitPrice × Quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Tax returns the tax amount of the line
func (li LineItem) Tax() decimal.Decimal {
	return li.Subtotal().Mul(li.TaxRate).Div(hundred)
}

// Total returns subtotal plus tax
func (li LineItem) Total() decimal.Decimal {
	return li.Subtotal().Add(li.Tax())
}

// Totals are derived from a draft and never stored
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Gross      decimal.Decimal // Subtotal + Tax
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal // Subtotal - Discount + Tax
	Paid       decimal.Decimal
	Balance    decimal.Decimal // GrandTotal - Paid
}

// Customer is the customer reference held by a draft
type Customer struct {
	ID   int
	Name string
}

// Draft is the invoice being edited. Paid and discount are re-clamped on
// every mutation so that 0 ≤ paid ≤ grand total and
// 0 ≤ discount ≤ subtotal + tax − paid hold at all times.
type Draft struct {
	customer *Customer
	items    []LineItem
	taxRate  decimal.Decimal
	paid     decimal.Decimal
	discount decimal.Decimal
	notes    string
	payMode  PayMode
}

// NewDraft creates an empty draft. taxRate applies to items added later;
// a zero rate falls back to DefaultTaxRate.
func NewDraft(taxRate decimal.Decimal) *Draft {
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}
	return &Draft{taxRate: taxRate, payMode: PayModeCash}
}

// SetCustomer selects the customer
func (d *Draft) SetCustomer(c Customer) {
	d.customer = &c
}

// Customer returns the selected customer, if any
func (d *Draft) Customer() (Customer, bool) {
	if d.customer == nil {
		return Customer{}, false
	}
	return *d.customer, true
}

// Items returns a copy of the line items
func (d *Draft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// AddProduct appends a product with quantity 1. Adding a product already on
// the draft does nothing and returns false.
func (d *Draft) AddProduct(productID int, name, itemCode string, unitPrice decimal.Decimal) bool {
	if d.indexOf(productID) >= 0 {
		return false
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	d.items = append(d.items, LineItem{
		ProductID: productID,
		Name:      name,
		ItemCode:  itemCode,
		UnitPrice: unitPrice,
		Quantity:  1,
		TaxRate:   d.taxRate,
	})
	d.clamp()
	return true
}

// SetQuantity changes an item's quantity; values below 1 are coerced to 1
func (d *Draft) SetQuantity(productID, qty int) bool {
	i := d.indexOf(productID)
	if i < 0 {
		return false
	}
	if qty < 1 {
		qty = 1
	}
	d.items[i].Quantity = qty
	d.clamp()
	return true
}

// RemoveProduct drops a product from the draft
func (d *Draft) RemoveProduct(productID int) bool {
	i := d.indexOf(productID)
	if i < 0 {
		return false
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	d.clamp()
	return true
}

// SetPaid sets the paid amount, clamped to [0, grand total]
func (d *Draft) SetPaid(amount decimal.Decimal) {
	subtotal, tax := d.sums()
	d.paid = clampRange(amount, subtotal.Add(tax).Sub(d.discount))
	d.clamp()
}

// SetDiscount sets the discount, clamped to [0, subtotal + tax − paid]
func (d *Draft) SetDiscount(amount decimal.Decimal) {
	subtotal, tax := d.sums()
	d.discount = clampRange(amount, subtotal.Add(tax).Sub(d.paid))
	d.clamp()
}

// SetNotes sets the free-text notes
func (d *Draft) SetNotes(notes string) {
	d.notes = notes
}

// Notes returns the notes
func (d *Draft) Notes() string {
	return d.notes
}

// SetPayMode selects the payment method; unknown modes are ignored
func (d *Draft) SetPayMode(m PayMode) bool {
	if !m.IsValid() {
		return false
	}
	d.payMode = m
	return true
}

// PayMode returns the selected payment method
func (d *Draft) PayMode() PayMode {
	return d.payMode
}

// Totals derives the current totals
func (d *Draft) Totals() Totals {
	subtotal, tax := d.sums()
	gross := subtotal.Add(tax)
	grand := subtotal.Sub(d.discount).Add(tax)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Gross:      gross,
		Discount:   d.discount,
		GrandTotal: grand,
		Paid:       d.paid,
		Balance:    grand.Sub(d.paid),
	}
}

// Validate checks the draft can be submitted
func (d *Draft) Validate() error {
	if d.customer == nil || d.customer.ID == 0 {
		return shared.NewValidationError("customer", "Please select a customer")
	}
	if len(d.items) == 0 {
		return shared.NewValidationError("items", "Please add at least one product")
	}
	return nil
}

// Reset clears items and adjustments. The customer and pay mode stay
// selected, as the screen keeps them after a submission.
func (d *Draft) Reset() {
	d.items = nil
	d.paid = decimal.Zero
	d.discount = decimal.Zero
	d.notes = ""
}

func (d *Draft) indexOf(productID int) int {
	for i, it := range d.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *Draft) sums() (subtotal, tax decimal.Decimal) {
	for _, it := range d.items {
		subtotal = subtotal.Add(it.Subtotal())
		tax = tax.Add(it.Tax())
	}
	return subtotal, tax
}

// clamp restores paid + discount ≤ subtotal + tax after the items change.
// Paid is kept where possible and the discount shrinks first.
func (d *Draft) clamp() {
	subtotal, tax := d.sums()
	gross := subtotal.Add(tax)

	d.paid = clampRange(d.paid, gross)
	d.discount = clampRange(d.discount, gross.Sub(d.paid))
}

func clampRange(v, max decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if max.IsNegative() {
		max = decimal.Zero
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}

// ParseAmount reads a user-typed amount; anything unparsable is zero
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
