package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/PabloGalante/valentine-quest"

// Metrics groups the counters the service exports.
// A zero Metrics (or nil pointer) is valid and records nothing.
type Metrics struct {
	eventsRecorded      metric.Int64Counter
	eventsFailed        metric.Int64Counter
	sessionsCreated     metric.Int64Counter
	generationFallbacks metric.Int64Counter
	transitions         metric.Int64Counter
}

// NewMetrics creates the instruments on the given provider.
// With a nil provider the global one is used.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(meterName)

	var (
		out Metrics
		err error
	)
	if out.eventsRecorded, err = m.Int64Counter("vsp.telemetry.recorded",
		metric.WithDescription("Telemetry writes that reached the store")); err != nil {
		return nil, err
	}
	if out.eventsFailed, err = m.Int64Counter("vsp.telemetry.failed",
		metric.WithDescription("Telemetry writes dropped after a failure")); err != nil {
		return nil, err
	}
	if out.sessionsCreated, err = m.Int64Counter("vsp.sessions.created",
		metric.WithDescription("Session records initialised")); err != nil {
		return nil, err
	}
	if out.generationFallbacks, err = m.Int64Counter("vsp.generation.fallbacks",
		metric.WithDescription("Generated messages replaced by a fallback")); err != nil {
		return nil, err
	}
	if out.transitions, err = m.Int64Counter("vsp.experience.transitions",
		metric.WithDescription("Experience state changes")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Metrics) EventRecorded(ctx context.Context, kind string) {
	if m == nil || m.eventsRecorded == nil {
		return
	}
	m.eventsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) EventFailed(ctx context.Context, kind string) {
	if m == nil || m.eventsFailed == nil {
		return
	}
	m.eventsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) SessionCreated(ctx context.Context, located bool) {
	if m == nil || m.sessionsCreated == nil {
		return
	}
	m.sessionsCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("located", located)))
}

func (m *Metrics) GenerationFallback(ctx context.Context, reason string) {
	if m == nil || m.generationFallbacks == nil {
		return
	}
	m.generationFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) Transition(ctx context.Context, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to)))
}
