// Package partner holds the customers of the shop.
package partner

import (
	"strings"

	"github.com/optica/admin/internal/domain/shared"
)

// Customer is a customer record as served by the admin API
type Customer struct {
	ID         int         `json:"id"`
	FileNumber shared.Text `json:"file_number"`
	FirstName  string      `json:"first_name"`
	SecondName string      `json:"second_name,omitempty"`
	Phone      string      `json:"phone_number_1"`
	Address    string      `json:"address"`
	Date       string      `json:"date,omitempty"`
	IsActive   shared.Flag `json:"is_active"`
}

// RecordID implements shared.Record
func (c *Customer) RecordID() int { return c.ID }

// Active implements shared.Record
func (c *Customer) Active() bool { return bool(c.IsActive) }

// SetActive implements shared.Record
func (c *Customer) SetActive(active bool) { c.IsActive = shared.Flag(active) }

// FullName joins first and second name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.SecondName)
}

// MatchesName reports whether the full name contains q, ignoring case.
// An empty query matches every customer.
func (c *Customer) MatchesName(q string) bool {
	return strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(strings.TrimSpace(q)))
}

// CustomerInput is the create/update form
type CustomerInput struct {
	FileNumber string `json:"file_number" validate:"required"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	Phone      string `json:"phone_number_1" validate:"required,max=30"`
	Address    string `json:"address" validate:"max=255"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Apply merges the submitted fields into c
func (in CustomerInput) Apply(c *Customer) {
	c.FileNumber = shared.Text(in.FileNumber)
	c.FirstName = in.FirstName
	c.Phone = in.Phone
	c.Address = in.Address
	if in.Date != "" {
		c.Date = in.Date
	}
}

// FilterActive returns the active customers, used by pickers
func FilterActive(customers []*Customer) []*Customer {
	out := make([]*Customer, 0, len(customers))
	for _, c := range customers {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}
