package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/optica/admin/internal/domain/measurement"
)

// MeasurementTypes returns every measurement type
func (c *Client) MeasurementTypes(ctx context.Context) ([]*measurement.Type, error) {
	return getList[*measurement.Type](ctx, c, "/admin/measurements")
}

// CreateMeasurementType stores a type with its selected attributes
func (c *Client) CreateMeasurementType(ctx context.Context, in measurement.TypeInput) (*measurement.Type, error) {
	env, err := c.sendJSON(ctx, http.MethodPost, "/admin/measurements/create", in)
	if err != nil {
		return nil, err
	}
	t := &measurement.Type{Name: in.Name, IsActive: in.IsActive}
	if err := decodeObject(env.Data, t, "measurement", "data"); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateMeasurementType replaces a type's name, flag and attributes
func (c *Client) UpdateMeasurementType(ctx context.Context, id int, in measurement.TypeInput) error {
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/measurements/%d/update", id), in)
	return err
}

// ToggleMeasurementType flips the active flag on the server
func (c *Client) ToggleMeasurementType(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/measurements/%d/toggle", id))
}

// TypeAttributes returns the attributes attached to a measurement type
func (c *Client) TypeAttributes(ctx context.Context, typeID int) ([]measurement.Attribute, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/admin/customers/measurements/%d/attributes", typeID)})
	if err != nil {
		return nil, err
	}
	var body struct {
		Attributes []measurement.Attribute `json:"attributes"`
	}
	if err := decodeObject(env.Data, &body); err != nil {
		return nil, err
	}
	if body.Attributes == nil {
		body.Attributes = []measurement.Attribute{}
	}
	return body.Attributes, nil
}

// MeasurementAttributes returns every attribute from settings
func (c *Client) MeasurementAttributes(ctx context.Context) ([]*measurement.Attribute, error) {
	return getList[*measurement.Attribute](ctx, c, "/admin/settings/measurements")
}

// MeasurementAttribute returns one attribute for the edit form
func (c *Client) MeasurementAttribute(ctx context.Context, id int) (*measurement.Attribute, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/admin/settings/measurements/%d/show", id)})
	if err != nil {
		return nil, err
	}
	a := &measurement.Attribute{}
	if err := decodeObject(env.Data, a, "data"); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateMeasurementAttribute stores a new attribute
func (c *Client) CreateMeasurementAttribute(ctx context.Context, in measurement.AttributeInput) (*measurement.Attribute, error) {
	env, err := c.sendJSON(ctx, http.MethodPost, "/admin/settings/measurements/create", in)
	if err != nil {
		return nil, err
	}
	a := &measurement.Attribute{Name: in.Name, IsActive: in.IsActive}
	if err := decodeObject(env.Data, a, "data"); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateMeasurementAttribute renames an attribute or changes its flag
func (c *Client) UpdateMeasurementAttribute(ctx context.Context, id int, in measurement.AttributeInput) error {
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/settings/measurements/%d/update", id), in)
	return err
}

// ToggleMeasurementAttribute flips the active flag on the server
func (c *Client) ToggleMeasurementAttribute(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/settings/measurements/%d/toggle", id))
}

// CustomerMeasurement returns the stored measurement of one type for a
// customer
func (c *Client) CustomerMeasurement(ctx context.Context, customerID, typeID int) (*measurement.Detail, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/admin/customers/%d/measurements/%d", customerID, typeID)})
	if err != nil {
		return nil, err
	}
	d := &measurement.Detail{}
	if err := decodeObject(env.Data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SaveCustomerMeasurement stores measured values for a customer
func (c *Client) SaveCustomerMeasurement(ctx context.Context, customerID int, rec measurement.Record) error {
	_, err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/customers/%d/measurements/create", customerID), rec)
	return err
}
