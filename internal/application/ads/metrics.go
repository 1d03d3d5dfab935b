package ads

import (
	"context"

	"github.com/optica/admin/internal/domain/ads"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/optica/admin/ads"

// Show outcomes recorded on ads.show.requests
const (
	OutcomeShown       = "shown"
	OutcomeAdsRemoved  = "ads_removed"
	OutcomeRateLimited = "rate_limited"
	OutcomeLoadFailed  = "load_failed"
	OutcomeShowFailed  = "show_failed"
	OutcomeBusy        = "busy"
	OutcomeEarned      = "earned"
	OutcomeNotEarned   = "not_earned"
	OutcomeTimeout     = "timeout"
)

// metrics holds the coordinator's instruments
type metrics struct {
	showRequests metric.Int64Counter
	loadRequests metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m := &metrics{}
	// Instrument creation only fails on invalid names; fall back to no-ops.
	var err error
	if m.showRequests, err = meter.Int64Counter("ads.show.requests",
		metric.WithDescription("Ad show requests by slot and outcome"),
	); err != nil {
		m.showRequests = nil
	}
	if m.loadRequests, err = meter.Int64Counter("ads.load.requests",
		metric.WithDescription("Load commands sent to the ad SDK"),
	); err != nil {
		m.loadRequests = nil
	}
	return m
}

func (m *metrics) show(kind ads.Kind, outcome string) {
	if m.showRequests == nil {
		return
	}
	m.showRequests.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("slot", string(kind)),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) load(kind ads.Kind) {
	if m.loadRequests == nil {
		return
	}
	m.loadRequests.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("slot", string(kind)),
	))
}
