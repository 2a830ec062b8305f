package entity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoItemsParsed matn katalogdagi hech bir mahsulotga mos kelmadi
	ErrNoItemsParsed = errors.New("no items parsed from text")

	// ErrInvariantViolation total and subtotals disagree; a rounding or merge bug
	ErrInvariantViolation = errors.New("quote invariant violated")

	// ErrSessionConflict session changed between read and write
	ErrSessionConflict = errors.New("session version conflict")

	ErrInvalidTransition = errors.New("invalid conversation step transition")
	ErrUnknownStep       = errors.New("unknown conversation step")
	ErrProductNotFound   = errors.New("product not found")
	ErrQuoteNotFound     = errors.New("quote not found")
	ErrCustomerNotFound  = errors.New("customer not found")
)

// InvariantViolationError carries the mismatching amounts.
type InvariantViolationError struct {
	Total       decimal.Decimal
	SubtotalSum decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("quote total %s differs from subtotal sum %s", e.Total.StringFixed(2), e.SubtotalSum.StringFixed(2))
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}
