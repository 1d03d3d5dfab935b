package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/optica/admin/internal/domain/partner"
)

// Customers returns every customer
func (c *Client) Customers(ctx context.Context) ([]*partner.Customer, error) {
	return getList[*partner.Customer](ctx, c, "/admin/customers")
}

// Customer returns one customer for the edit form
func (c *Client) Customer(ctx context.Context, id int) (*partner.Customer, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/admin/customers/%d/view", id)})
	if err != nil {
		return nil, err
	}
	cust := &partner.Customer{}
	if err := decodeObject(env.Data, cust, "data"); err != nil {
		return nil, err
	}
	return cust, nil
}

// CreateCustomer stores a new customer. The returned record is the input
// overlaid with whatever the server echoed back, at least the id.
func (c *Client) CreateCustomer(ctx context.Context, in partner.CustomerInput) (*partner.Customer, error) {
	env, err := c.sendJSON(ctx, http.MethodPost, "/admin/customers/create", in)
	if err != nil {
		return nil, err
	}
	cust := &partner.Customer{IsActive: true}
	in.Apply(cust)
	if err := decodeObject(env.Data, cust, "data"); err != nil {
		return nil, err
	}
	return cust, nil
}

// UpdateCustomer replaces the editable fields of a customer
func (c *Client) UpdateCustomer(ctx context.Context, id int, in partner.CustomerInput) error {
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/customers/update/%d", id), in)
	return err
}

// ToggleCustomer flips the active flag on the server
func (c *Client) ToggleCustomer(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/customers/%d/toggle", id))
}
