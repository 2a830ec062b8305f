package entity

import "github.com/shopspring/decimal"

// ParsedMention matndan topilgan (mahsulot, miqdor) juftligi.
// Start and End are rune offsets into the normalized text.
type ParsedMention struct {
	Product     Product `json:"product"`
	Quantity    int     `json:"quantity"`
	MatchedText string  `json:"matched_text"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Confidence  int     `json:"confidence"`
}

// CartItem savatdagi bitta qator; ProductName is the merge key.
type CartItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Description string          `json:"description,omitempty"`
}

// NewCartItem builds a line from a mention with its subtotal set.
func NewCartItem(m ParsedMention) CartItem {
	item := CartItem{
		ProductName: m.Product.Name,
		UnitPrice:   m.Product.UnitPrice(),
		Description: m.Product.Category,
	}
	item.SetQuantity(m.Quantity)
	return item
}

// SetQuantity changes the quantity and keeps the subtotal consistent.
func (c *CartItem) SetQuantity(qty int) {
	c.Quantity = qty
	c.Subtotal = LineSubtotal(c.UnitPrice, qty)
}

// LineSubtotal is qty × price rounded half-up to cents.
func LineSubtotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// CartTotal sums the subtotals of a cart.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total.Round(2)
}

// CloneItems returns an independent copy of items.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
