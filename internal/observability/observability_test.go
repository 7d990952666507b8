package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFromContext_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSessionID(ctx, "sess-1")
	FromContext(ctx, base).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "sess-1", line["session_id"])
}

func TestFromContext_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	FromContext(context.Background(), base).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "request_id")
	assert.NotContains(t, line, "session_id")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.EventRecorded(ctx, "event")
	m.EventFailed(ctx, "event")
	m.SessionCreated(ctx, true)
	m.GenerationFallback(ctx, "error")
	m.Transition(ctx, "FAQ")
}

func TestMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.EventRecorded(ctx, "event")
	m.EventRecorded(ctx, "event")
	m.GenerationFallback(ctx, "timeout")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["vsp.telemetry.recorded"])
	assert.Equal(t, int64(1), totals["vsp.generation.fallbacks"])
}

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "test")
	require.NoError(t, err)
	require.NotNil(t, p.TracerProvider)
	require.NotNil(t, p.MeterProvider)

	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "op")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviders_BadEndpoint(t *testing.T) {
	_, err := NewProviders(context.Background(), "http://", "test")
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, level.Level())
	SetLevel("bogus")
	assert.Equal(t, slog.LevelInfo, level.Level())
}
