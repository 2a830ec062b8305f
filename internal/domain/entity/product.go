package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product katalogdagi mahsulot
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" validate:"required,max=200"`
	Aliases  []string        `json:"aliases"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	ImageURL string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Stock    *int            `json:"stock,omitempty"`
}

// Validate checks the fields a catalog import must provide.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("product %q: %w", p.Name, err)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("product %q: price must be positive, got %s", p.Name, p.Price.String())
	}
	for _, alias := range p.Aliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("product %q: empty alias", p.Name)
		}
	}
	return nil
}

// UnitPrice is the price used on quote lines.
func (p Product) UnitPrice() decimal.Decimal {
	return p.Price.Round(2)
}
