package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out
}

func TestCountersRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	c, err := NewCountersWithMeter(provider.Meter(meterName))
	require.NoError(t, err)

	ctx := context.Background()
	c.SessionExpired(ctx)
	c.ParseFailed(ctx, true)
	c.ParseFailed(ctx, false)
	c.QuoteCreated(ctx)
	c.QuoteCreated(ctx)
	c.QuoteCreated(ctx)
	c.InvariantViolated(ctx)
	c.MessageRejected(ctx, "queue_full")

	got := collect(t, reader)
	assert.EqualValues(t, 1, got["quote_bot.sessions_expired"])
	assert.EqualValues(t, 2, got["quote_bot.parse_failures"])
	assert.EqualValues(t, 3, got["quote_bot.quotes_created"])
	assert.EqualValues(t, 1, got["quote_bot.invariant_violations"])
	assert.EqualValues(t, 1, got["quote_bot.messages_rejected"])
}

func TestNewCountersGlobalProvider(t *testing.T) {
	c, err := NewCounters()
	require.NoError(t, err)
	assert.NotPanics(t, func() { c.SessionExpired(context.Background()) })
}
