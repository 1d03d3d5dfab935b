// Package api is the client of the optical admin REST backend. Every
// endpoint the app uses is a method on Client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/optica/admin/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/optica/admin/api"

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// RetryConfig configures retries of idempotent requests
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// Client talks to the admin API
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	tokens     TokenSource
	retry      RetryConfig
	logger     *zap.Logger
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("api") }
}

// WithRetry overrides the retry policy
func WithRetry(r RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

// WithTracerProvider sets the tracer provider; the global one is used otherwise
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// New creates a client for the configured backend
func New(cfg config.APIConfig, tokens TokenSource, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		retry.RetryDelay = cfg.RetryDelay
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		tokens:     tokens,
		retry:      retry,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root, used to resolve relative image paths
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.baseURL.String(), "/")
}

// request is one call to the backend
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload == nil {
		return r, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("marshaling request body: %w", err)
	}
	r.body = body
	r.contentType = "application/json"
	return r, nil
}

// idempotent requests are retried; mutations never are
func (r request) idempotent() bool {
	return r.method == http.MethodGet || r.method == http.MethodHead
}

// do executes the request and returns the decoded envelope. Non-2xx
// statuses and envelopes with status false become *Error.
func (c *Client) do(ctx context.Context, req request) (*Envelope, error) {
	u, err := c.baseURL.Parse(strings.TrimLeft(req.path, "/"))
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "api "+req.method+" "+req.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", u.Path),
		),
	)
	defer span.End()

	maxRetries := 0
	if req.idempotent() {
		maxRetries = c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, c.fail(span, &Error{Method: req.method, Path: req.path, Err: ctx.Err()})
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		status, body, err := c.roundTrip(ctx, u, req)
		if err != nil {
			lastErr = &Error{Method: req.method, Path: req.path, Err: err}
			if ctx.Err() == nil && attempt < maxRetries {
				c.logger.Debug("retrying request", zap.String("path", req.path), zap.Int("attempt", attempt+1), zap.Error(err))
				continue
			}
			return nil, c.fail(span, lastErr)
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))

		env, decodeErr := decodeEnvelope(body)
		if status < 200 || status > 299 {
			apiErr := &Error{Method: req.method, Path: req.path, StatusCode: status}
			if decodeErr == nil {
				apiErr.Message = env.Message
			}
			lastErr = apiErr
			if shouldRetry(status) && attempt < maxRetries {
				continue
			}
			return nil, c.fail(span, lastErr)
		}
		if decodeErr != nil {
			return nil, c.fail(span, &Error{Method: req.method, Path: req.path, StatusCode: status, Err: decodeErr})
		}
		if !env.OK() {
			return nil, c.fail(span, &Error{Method: req.method, Path: req.path, StatusCode: status, Message: env.Message})
		}
		span.SetStatus(codes.Ok, "")
		return env, nil
	}
	return nil, c.fail(span, lastErr)
}

func (c *Client) roundTrip(ctx context.Context, u *url.URL, req request) (int, []byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	c.setHeaders(ctx, httpReq, req)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	c.logger.Debug("api response",
		zap.Int("status", resp.StatusCode),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", httpReq.Header.Get("X-Request-ID")),
	)
	return resp.StatusCode, data, nil
}

func (c *Client) setHeaders(ctx context.Context, httpReq *http.Request, req request) {
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.logger.Warn("api request failed",
			zap.String("method", apiErr.Method),
			zap.String("path", apiErr.Path),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
			zap.NamedError("cause", apiErr.Err),
		)
	}
	return err
}

// shouldRetry reports whether a status is worth retrying
func shouldRetry(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// calculateBackoff calculates the backoff delay for the given attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := c.retry.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	delay := float64(c.retry.RetryDelay) * math.Pow(multiplier, float64(attempt-1))
	if c.retry.MaxDelay > 0 && delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	// ±25% jitter
	jitter := delay * 0.25
	delay += (rand.Float64()*2 - 1) * jitter
	return time.Duration(delay)
}
