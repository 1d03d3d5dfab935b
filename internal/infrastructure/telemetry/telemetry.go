// Package telemetry wires the OpenTelemetry tracer and meter providers.
// When disabled the global no-op providers stay in place.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/optica/admin/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

// Config holds telemetry configuration
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	// MetricsInterval is how often metrics are pushed; zero means 60s
	MetricsInterval time.Duration
}

// FromConfig maps the telemetry section of the app config
func FromConfig(cfg config.TelemetryConfig) Config {
	return Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}
}

// Providers bundles the tracer and meter providers for shutdown
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
}

// Setup creates both providers and installs them globally
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	logger = logger.Named("telemetry")

	tp, err := NewTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mp, err := NewMeterProvider(ctx, cfg, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return &Providers{Tracer: tp, Meter: mp}, nil
}

// Shutdown flushes and stops both providers
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
