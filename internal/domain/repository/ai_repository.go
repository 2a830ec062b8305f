package repository

import "context"

// FallbackResponder AI bilan ishlash uchun interface; only used when a
// message is neither an order nor a known intent.
type FallbackResponder interface {
	// FallbackResponse mijoz xabariga qisqa javob yaratish
	FallbackResponse(ctx context.Context, text string) (string, error)
}

// FAQResponder answers the fixed FAQ intents (location, delivery, payment).
type FAQResponder interface {
	Answer(intent string) (string, bool)
}
