package usecase

import "context"

// Metrics receives the events the conversation flow counts.
type Metrics interface {
	SessionExpired(ctx context.Context)
	ParseFailed(ctx context.Context, orderIntent bool)
	QuoteCreated(ctx context.Context)
	InvariantViolated(ctx context.Context)
}

type noopMetrics struct{}

func (noopMetrics) SessionExpired(context.Context)    {}
func (noopMetrics) ParseFailed(context.Context, bool) {}
func (noopMetrics) QuoteCreated(context.Context)      {}
func (noopMetrics) InvariantViolated(context.Context) {}
