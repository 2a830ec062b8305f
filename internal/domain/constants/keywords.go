package constants

// Default keyword groups. All entries are written already normalized
// (lowercase, no accents) and can be overridden from KEYWORDS_FILE.

var DeleteKeywords = []string{
	"elimina", "quita", "borra", "saca", "remover", "quitar",
	"eliminar", "borrar", "sacar", "remueve",
}

// ReplaceKeywords turn a message into a strong command without negating anything.
var ReplaceKeywords = []string{
	"solo deja", "reemplaza", "sustituye", "cambia por",
}

var CartClearKeywords = []string{
	"vaciar carrito", "vaciar el carrito", "vacia el carrito", "limpiar carrito",
	"borrar todo", "borra todo", "cancelar pedido", "cancelar todo", "empezar de nuevo",
}

var GreetingKeywords = []string{
	"hola", "buenas", "buenos dias", "buenas tardes", "buenas noches", "saludos", "hey",
}

var LocationKeywords = []string{
	"ubicacion", "donde estan", "donde quedan", "direccion de la tienda", "como llego",
}

var DeliveryKeywords = []string{
	"delivery", "envio", "envios", "a domicilio", "hacen entregas",
}

var PaymentKeywords = []string{
	"metodos de pago", "metodo de pago", "formas de pago", "como pago", "pago movil", "zelle", "binance",
}

var CatalogKeywords = []string{
	"catalogo", "lista de productos", "que venden", "que productos", "menu",
}

var CheckoutKeywords = []string{
	"confirmar", "confirmo", "finalizar", "finalizar pedido", "eso es todo", "checkout", "procesar pedido",
}

var OrderIntentKeywords = []string{
	"quiero", "necesito", "dame", "deme", "agrega", "agregar", "anade", "pon", "coloca",
	"cotizar", "cotizacion", "precio", "cuanto cuesta", "cuanto vale", "comprar", "pedido",
}

// Wizard keywords.
var (
	NameRejectKeywords     = []string{"precio", "cuanto", "delivery", "pago"}
	ConfirmKeywords        = []string{"si", "ok", "correcto", "dale", "confirmar", "confirmo"}
	EditKeywords           = []string{"no", "corregir", "mal", "incorrecto", "error"}
	UseExistingKeywords    = []string{"si", "usar estos", "correctos", "bien", "usar"}
	UpdateExistingKeywords = []string{"no", "actualizar", "cambiar", "corregir", "nuevos"}
)
