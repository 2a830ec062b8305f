package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "quote-bot"

// Counters OpenTelemetry hisoblagichlari; satisfies usecase.Metrics.
type Counters struct {
	sessionsExpired  metric.Int64Counter
	parseFailures    metric.Int64Counter
	quotesCreated    metric.Int64Counter
	invariantErrors  metric.Int64Counter
	messagesRejected metric.Int64Counter
}

// NewCounters uses the global meter provider.
func NewCounters() (*Counters, error) {
	return NewCountersWithMeter(otel.Meter(meterName))
}

// NewCountersWithMeter registers the instruments on meter.
func NewCountersWithMeter(meter metric.Meter) (*Counters, error) {
	c := &Counters{}
	instruments := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&c.sessionsExpired, "quote_bot.sessions_expired", "Carts discarded after the idle TTL"},
		{&c.parseFailures, "quote_bot.parse_failures", "Messages where no product could be extracted"},
		{&c.quotesCreated, "quote_bot.quotes_created", "Quotes persisted at checkout"},
		{&c.invariantErrors, "quote_bot.invariant_violations", "Quotes whose total did not match the line sum"},
		{&c.messagesRejected, "quote_bot.messages_rejected", "Inbound messages dropped by the worker pool"},
	}
	for _, s := range instruments {
		counter, err := meter.Int64Counter(s.name, metric.WithDescription(s.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", s.name, err)
		}
		*s.dst = counter
	}
	return c, nil
}

func (c *Counters) SessionExpired(ctx context.Context) {
	c.sessionsExpired.Add(ctx, 1)
}

func (c *Counters) ParseFailed(ctx context.Context, orderIntent bool) {
	c.parseFailures.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order_intent", orderIntent)))
}

func (c *Counters) QuoteCreated(ctx context.Context) {
	c.quotesCreated.Add(ctx, 1)
}

func (c *Counters) InvariantViolated(ctx context.Context) {
	c.invariantErrors.Add(ctx, 1)
}

// MessageRejected reason: "queue_full", "rate_limited" or "shutdown".
func (c *Counters) MessageRejected(ctx context.Context, reason string) {
	c.messagesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
