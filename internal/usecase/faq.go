package usecase

// StaticFAQ answers FAQ intents from configured text.
type StaticFAQ map[string]string

// DefaultFAQ is used when no answers are configured.
func DefaultFAQ() StaticFAQ {
	return StaticFAQ{
		FAQLocation: "📍 *Nuestra Ubicación:*\nCentro Comercial El Socorro, Local 12, Valencia.\n\n⏰ *Horario de Atención:*\nLunes a Sábado de 8:00 AM a 5:00 PM",
		FAQDelivery: "🚚 *Servicio de Delivery:*\nRealizamos entregas en toda la ciudad.\n\n💰 *Tarifas:*\nConsultar tarifa según zona.",
		FAQPayment:  "💳 *Métodos de Pago:*\nAceptamos Efectivo, Pago Móvil, Zelle y Binance.",
	}
}

// Answer returns the text configured for intent.
func (f StaticFAQ) Answer(intent string) (string, bool) {
	text, ok := f[intent]
	return text, ok && text != ""
}

// WithOverrides returns a copy with non-empty overrides applied.
func (f StaticFAQ) WithOverrides(overrides map[string]string) StaticFAQ {
	out := make(StaticFAQ, len(f)+len(overrides))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
