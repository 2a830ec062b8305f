package entity

import (
	"strings"
	"time"
)

// Customer CRM yozuvi, telefon raqami bo'yicha yagona
type Customer struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone" validate:"required,phone"`
	FullName  string    `json:"full_name,omitempty" validate:"max=200"`
	DNI       string    `json:"dni,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCompleteData reports whether checkout can reuse the stored data.
func (c *Customer) HasCompleteData() bool {
	return c != nil &&
		strings.TrimSpace(c.FullName) != "" &&
		strings.TrimSpace(c.DNI) != "" &&
		strings.TrimSpace(c.Address) != ""
}

// FirstName returns the first word of the full name.
func (c *Customer) FirstName() string {
	if c == nil {
		return ""
	}
	fields := strings.Fields(c.FullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Validate checks the phone and name rules.
func (c *Customer) Validate() error {
	return validate.Struct(c)
}
