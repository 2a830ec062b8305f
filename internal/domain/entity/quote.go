package entity

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// QuoteStatus kotirovka holati
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// QuoteItem kotirovkadagi qator
type QuoteItem struct {
	ProductName string          `json:"product_name" validate:"required,max=200"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// Quote checkout paytida yaratiladigan kotirovka
type Quote struct {
	ID            int64           `json:"id,omitempty"`
	ClientPhone   string          `json:"client_phone" validate:"required,phone"`
	Items         []QuoteItem     `json:"items" validate:"min=1,dive"`
	Total         decimal.Decimal `json:"total"`
	Status        QuoteStatus     `json:"status" validate:"oneof=draft pending approved rejected expired"`
	CustomerID    string          `json:"customer_id,omitempty"`
	ClientName    string          `json:"client_name,omitempty"`
	ClientDNI     string          `json:"client_dni,omitempty"`
	ClientAddress string          `json:"client_address,omitempty"`
	Notes         string          `json:"notes,omitempty" validate:"max=1000"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

var (
	validate     = newValidator()
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	invariantTol = decimal.New(1, -2)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// SubtotalSum adds the item subtotals.
func (q *Quote) SubtotalSum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range q.Items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// CheckInvariant verifies |total - Σ subtotal| <= 0.01.
func (q *Quote) CheckInvariant() error {
	sum := q.SubtotalSum()
	if q.Total.Sub(sum).Abs().GreaterThan(invariantTol) {
		return &InvariantViolationError{Total: q.Total, SubtotalSum: sum}
	}
	return nil
}

// Validate runs field rules, price rules and the total invariant.
func (q *Quote) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid quote: %w", err)
	}
	for _, item := range q.Items {
		if !item.UnitPrice.IsPositive() {
			return fmt.Errorf("invalid quote: %s has non-positive price", item.ProductName)
		}
		if !item.Subtotal.Equal(LineSubtotal(item.UnitPrice, item.Quantity)) {
			return &InvariantViolationError{Total: item.Subtotal, SubtotalSum: LineSubtotal(item.UnitPrice, item.Quantity)}
		}
	}
	return q.CheckInvariant()
}

// ItemsFromCart converts cart lines to quote lines.
func ItemsFromCart(items []CartItem) []QuoteItem {
	out := make([]QuoteItem, 0, len(items))
	for _, it := range items {
		out = append(out, QuoteItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Description: it.Description,
		})
	}
	return out
}
