package usecase

import (
	"strings"

	"github.com/yourusername/quote-bot/internal/domain/constants"
)

// Keywords all keyword groups the conversation reacts to, already normalized.
type Keywords struct {
	Delete      []string
	Replace     []string
	CartClear   []string
	Greeting    []string
	Location    []string
	Delivery    []string
	Payment     []string
	Catalog     []string
	Checkout    []string
	OrderIntent []string

	NameReject     []string
	Confirm        []string
	Edit           []string
	UseExisting    []string
	UpdateExisting []string
}

// DefaultKeywords returns the built-in groups.
func DefaultKeywords() Keywords {
	return Keywords{
		Delete:         constants.DeleteKeywords,
		Replace:        constants.ReplaceKeywords,
		CartClear:      constants.CartClearKeywords,
		Greeting:       constants.GreetingKeywords,
		Location:       constants.LocationKeywords,
		Delivery:       constants.DeliveryKeywords,
		Payment:        constants.PaymentKeywords,
		Catalog:        constants.CatalogKeywords,
		Checkout:       constants.CheckoutKeywords,
		OrderIntent:    constants.OrderIntentKeywords,
		NameReject:     constants.NameRejectKeywords,
		Confirm:        constants.ConfirmKeywords,
		Edit:           constants.EditKeywords,
		UseExisting:    constants.UseExistingKeywords,
		UpdateExisting: constants.UpdateExistingKeywords,
	}
}

// Merge overlays non-empty groups from o.
func (k Keywords) Merge(o Keywords) Keywords {
	pick := func(base, override []string) []string {
		if len(override) == 0 {
			return base
		}
		out := make([]string, 0, len(override))
		for _, kw := range override {
			if kw = strings.TrimSpace(Normalize(kw)); kw != "" {
				out = append(out, kw)
			}
		}
		return out
	}
	return Keywords{
		Delete:         pick(k.Delete, o.Delete),
		Replace:        pick(k.Replace, o.Replace),
		CartClear:      pick(k.CartClear, o.CartClear),
		Greeting:       pick(k.Greeting, o.Greeting),
		Location:       pick(k.Location, o.Location),
		Delivery:       pick(k.Delivery, o.Delivery),
		Payment:        pick(k.Payment, o.Payment),
		Catalog:        pick(k.Catalog, o.Catalog),
		Checkout:       pick(k.Checkout, o.Checkout),
		OrderIntent:    pick(k.OrderIntent, o.OrderIntent),
		NameReject:     pick(k.NameReject, o.NameReject),
		Confirm:        pick(k.Confirm, o.Confirm),
		Edit:           pick(k.Edit, o.Edit),
		UseExisting:    pick(k.UseExisting, o.UseExisting),
		UpdateExisting: pick(k.UpdateExisting, o.UpdateExisting),
	}
}

// hasPhrase reports whether phrase occurs in norm on word boundaries.
func hasPhrase(norm []rune, phrase string) bool {
	p := []rune(phrase)
	n := len(p)
	if n == 0 {
		return false
	}
	for i := 0; i+n <= len(norm); i++ {
		if !runesEqual(norm[i:i+n], p) {
			continue
		}
		if i > 0 && isWordRune(norm[i-1]) {
			continue
		}
		if i+n < len(norm) && isWordRune(norm[i+n]) {
			continue
		}
		return true
	}
	return false
}

func hasAnyPhrase(norm []rune, phrases []string) bool {
	for _, phrase := range phrases {
		if hasPhrase(norm, phrase) {
			return true
		}
	}
	return false
}

// hasWordPrefix reports whether any word of norm starts with one of the
// keywords ("quitale" counts as "quita"). Keywords with spaces match as phrases.
func hasWordPrefix(norm []rune, keywords []string) bool {
	words := wordSpans(norm)
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if hasPhrase(norm, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(string(norm[w[0]:w[1]]), kw) {
				return true
			}
		}
	}
	return false
}
