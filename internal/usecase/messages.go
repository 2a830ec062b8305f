package usecase

import (
	"fmt"
	"strings"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// Reply texts (Spanish, WhatsApp markdown).
const (
	msgCartCleared       = "🗑️ Tu carrito ha sido vaciado."
	msgNoCart            = "🛒 Tu carrito está vacío. Dime qué productos necesitas, por ejemplo: \"Quiero 2 zapatos y 1 camisa\"."
	msgNoActiveQuote     = "⚠️ No tienes una cotización activa para confirmar."
	msgClarify           = "🤔 Entiendo que quieres una cotización, pero no logré identificar el producto. ¿Podrías decirme qué necesitas exactamente?"
	msgAskName           = "📝 ¡Perfecto! Para generar tu cotización indícame tu **Nombre y Apellido**:"
	msgInvalidName       = "🤔 Disculpa, ¿podrías indicarme tu **Nombre y Apellido** para continuar con el registro?"
	msgAskDNI            = "✅ Guardado. Ahora indícame tu **Cédula o RIF**:"
	msgInvalidDNI        = "⚠️ Por favor, envíame un **Cédula o RIF** válido para procesar tu nota de entrega."
	msgAskAddress        = "👍 Listo. Por último, envíame tu **Dirección Fiscal / Entrega**:"
	msgShortAddress      = "⚠️ La dirección es muy corta. Por favor sé un poco más específico."
	msgRestartWizard     = "Entendido. Empecemos de nuevo. Por favor, indícame tu **Nombre y Apellido** correctos."
	msgAmbiguousFinal    = "⚠️ Por favor escribe **SÍ** para finalizar o **CORREGIR** para cambiar tus datos."
	msgUpdateData        = "📝 Entendido. Actualicemos tus datos.\n\nPor favor, indícame tu **Nombre y Apellido**:"
	msgAmbiguousExisting = "⚠️ Por favor confirma si los datos son correctos o si deseas actualizarlos."
	msgCheckoutFailed    = "❌ Error generando cotización final."
	msgDocumentFailed    = "Cotización guardada exitosamente. Hubo un error técnico generando el documento."
	msgCatalogIntro      = "Aquí tienes nuestro catálogo actualizado 📂"
	msgCatalogEmpty      = "😕 Por ahora no tenemos productos disponibles en el catálogo."
	msgFallbackGeneric   = "🤖 Soy el asistente de cotizaciones. Puedes pedirme productos como si hablaras con un vendedor, por ejemplo: \"Quiero 2 camisas\"."
)

func greetingText(customer *entity.Customer) string {
	examples := "Ejemplos:\n🔹 'Precio de los zapatos'\n🔹 'Quiero 2 camisas'"
	if name := customer.FirstName(); name != "" {
		return fmt.Sprintf("¡Hola de nuevo, %s! 👋\n\nEstoy listo para tomar tu pedido. Dime qué necesitas.\n\n%s", name, examples)
	}
	return "¡Hola! 👋 Bienvenido.\n\nPuedes pedirme lo que necesites como si hablaras con un vendedor.\nEscribe *catálogo* para ver nuestros productos.\n\n" + examples
}

// CartSummary renders the reply for a cart update.
func CartSummary(update *CartUpdate) string {
	if update == nil || len(update.Items) == 0 {
		return msgCartCleared
	}
	title := "Productos Agregados"
	if update.Strong {
		title = "Carrito Actualizado"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ *%s*\n\n", title)
	for _, item := range update.Items {
		fmt.Fprintf(&b, "• %d %s\n", item.Quantity, item.ProductName)
	}
	fmt.Fprintf(&b, "\n💰 *Total Actual:* $%s\n", update.Total())
	b.WriteString("Escribe *'confirmar'* para finalizar o sigue agregando.")
	return b.String()
}

func confirmDataText(data entity.ClientData, total string) string {
	var b strings.Builder
	b.WriteString("📝 *Confirma tus Datos*\n\n")
	fmt.Fprintf(&b, "👤 *Nombre:* %s\n", data.Name)
	fmt.Fprintf(&b, "🆔 *CI/RIF:* %s\n", data.DNI)
	fmt.Fprintf(&b, "📍 *Dirección:* %s\n\n", data.Address)
	fmt.Fprintf(&b, "💰 *Total a pagar:* $%s\n\n", total)
	b.WriteString("¿Los datos son correctos? Responde *SÍ* para confirmar o *CORREGIR* para cambiarlos.")
	return b.String()
}

func existingDataText(c *entity.Customer, total string) string {
	var b strings.Builder
	b.WriteString("👋 Tenemos tus datos registrados:\n\n")
	fmt.Fprintf(&b, "👤 *Nombre:* %s\n", c.FullName)
	fmt.Fprintf(&b, "🆔 *CI/RIF:* %s\n", c.DNI)
	fmt.Fprintf(&b, "📍 *Dirección:* %s\n\n", c.Address)
	fmt.Fprintf(&b, "💰 *Total a pagar:* $%s\n\n", total)
	b.WriteString("¿Usamos estos datos? Responde *SÍ* o *ACTUALIZAR*.")
	return b.String()
}

// QuoteMessage formats a saved quote for chat.
func QuoteMessage(q *entity.Quote) string {
	var b strings.Builder
	if q.ID > 0 {
		fmt.Fprintf(&b, "✅ *Cotización Generada* (N° %d)\n\n", q.ID)
	} else {
		b.WriteString("✅ *Cotización Generada*\n\n")
	}
	b.WriteString("📦 *Productos:*\n")
	for i, item := range q.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.ProductName)
		fmt.Fprintf(&b, "   Cantidad: %d × $%s = $%s\n", item.Quantity, item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n💰 *Total: $%s*\n\n", q.Total.StringFixed(2))
	b.WriteString("Tu cotización ha sido registrada. ¡Gracias por tu compra!")
	return b.String()
}
