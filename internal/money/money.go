// Package money represents peso amounts as integer centavos.
//
// All arithmetic stays in int64 minor units so repeated additions never
// accumulate rounding error. Decimal conversion is only used at the edges
// (parsing catalog files, formatting, NUMERIC columns).
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNegative is returned when parsing a negative amount.
var ErrNegative = errors.New("amount must not be negative")

// ErrPrecision is returned when an amount has more than two decimal places.
var ErrPrecision = errors.New("amount has sub-centavo precision")

// Amount is a non-negative peso value in centavos.
type Amount int64

// Zero is the empty amount.
const Zero Amount = 0

// Pesos returns the amount for a whole number of pesos.
func Pesos(p int64) Amount {
	return Amount(p * 100)
}

// Parse reads a decimal string such as "89", "89.5" or "174.00".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts an exact decimal value into centavos.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, ErrNegative
	}
	centavos := d.Shift(2)
	if !centavos.Equal(centavos.Truncate(0)) {
		return 0, ErrPrecision
	}
	return Amount(centavos.IntPart()), nil
}

// Decimal returns the amount in pesos as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Times returns the amount multiplied by a quantity.
func (a Amount) Times(qty int) Amount {
	return a * Amount(qty)
}

// String renders two decimal places, e.g. "263.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Display renders the amount with the peso sign, e.g. "₱263.00".
func (a Amount) Display() string {
	return "₱" + a.String()
}

// MarshalText encodes the amount as a fixed two-decimal string.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a decimal string.
func (a *Amount) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
