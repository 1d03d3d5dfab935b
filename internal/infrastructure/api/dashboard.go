package api

import (
	"context"
	"net/http"

	"github.com/optica/admin/internal/domain/report"
)

// Dashboard returns the headline totals
func (c *Client) Dashboard(ctx context.Context) (report.DashboardStats, error) {
	var stats report.DashboardStats
	env, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/dashboard"})
	if err != nil {
		return stats, err
	}
	err = decodeObject(env.Data, &stats, "data")
	return stats, err
}

// Sales returns the recent sales
func (c *Client) Sales(ctx context.Context) ([]report.Sale, error) {
	return getList[report.Sale](ctx, c, "/admin/sales")
}

// Sliders returns the home screen banners
func (c *Client) Sliders(ctx context.Context) ([]report.Slider, error) {
	return getList[report.Slider](ctx, c, "/admin/sliders")
}

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return decodeList[T](env.Data)
}

// send issues a body-less mutation such as a toggle
func (c *Client) send(ctx context.Context, method, path string) error {
	_, err := c.do(ctx, request{method: method, path: path})
	return err
}

// sendJSON issues a JSON mutation and returns the envelope
func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*Envelope, error) {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}
