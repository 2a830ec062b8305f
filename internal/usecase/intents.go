package usecase

import (
	"github.com/yourusername/quote-bot/internal/domain/constants"
)

// FAQ intents.
const (
	FAQLocation = "location"
	FAQDelivery = "delivery"
	FAQPayment  = "payment"
)

// Signals xabardan topilgan niyatlar
type Signals struct {
	CartClear   bool
	Greeting    bool
	FAQ         string
	Catalog     bool
	Checkout    bool
	OrderIntent bool
}

// IntentClassifier matches keyword groups on normalized, whole-word text.
type IntentClassifier struct {
	kw Keywords
}

// NewIntentClassifier yangi klassifikator
func NewIntentClassifier(kw Keywords) *IntentClassifier {
	return &IntentClassifier{kw: kw}
}

// Classify computes every signal for text.
func (c *IntentClassifier) Classify(text string) Signals {
	norm := normalizeRunes(text)
	s := Signals{
		CartClear:   hasAnyPhrase(norm, c.kw.CartClear),
		Catalog:     hasAnyPhrase(norm, c.kw.Catalog),
		Checkout:    hasAnyPhrase(norm, c.kw.Checkout),
		OrderIntent: hasAnyPhrase(norm, c.kw.OrderIntent),
	}
	switch {
	case hasAnyPhrase(norm, c.kw.Location):
		s.FAQ = FAQLocation
	case hasAnyPhrase(norm, c.kw.Delivery):
		s.FAQ = FAQDelivery
	case hasAnyPhrase(norm, c.kw.Payment):
		s.FAQ = FAQPayment
	}
	words := len(wordSpans(norm))
	s.Greeting = hasAnyPhrase(norm, c.kw.Greeting) && words <= constants.GreetingMaxWords && !s.OrderIntent
	return s
}
