// Package apitest builds API clients for tests that run against a fake
// backend.
package apitest

import (
	"testing"
	"time"

	"github.com/optica/admin/internal/infrastructure/api"
	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

// Token implements api.TokenSource
func (s StaticToken) Token() string { return string(s) }

// NewClient returns a client for baseURL with fast retries
func NewClient(t *testing.T, baseURL string, tokens api.TokenSource, opts ...api.Option) *api.Client {
	t.Helper()
	opts = append([]api.Option{api.WithRetry(api.RetryConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2,
	})}, opts...)
	c, err := api.New(config.APIConfig{BaseURL: baseURL, Timeout: 2 * time.Second, UserAgent: "optica-test"}, tokens, opts...)
	require.NoError(t, err)
	return c
}
