// Package core holds the Budgety domain model.
//
// Money is stored as integer cents. All monetary input is truncated toward
// zero to 2 decimal places at the boundary (29.999 becomes 29.99, never
// 30.00); cents are never re-rounded after that.
package core

import (
	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// ParseAmount truncates a decimal amount to 2 places and converts it to
// cents. The amount must be strictly positive after truncation.
func ParseAmount(d decimal.Decimal) (Money, error) {
	cents := d.Truncate(2).Shift(2).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount as an exact 2-decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders money as a 2-decimal string ("29.99") so clients never
// see binary-float artifacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
