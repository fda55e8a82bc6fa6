// Package types provides the money type shared by every ledger entity.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point drift.
type Money = decimal.Decimal

// MoneyScale is the number of fraction digits stored for amounts.
const MoneyScale int32 = 2

func init() {
	// Amounts travel as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// NewMoney creates Money from whole currency units.
func NewMoney(units int64) Money {
	return decimal.NewFromInt(units)
}

// ParseMoney parses a decimal string such as "150.25".
func ParseMoney(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses a decimal string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MinMoney returns the smaller of two amounts.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Round normalizes an amount to the stored scale.
func Round(m Money) Money {
	return m.Round(MoneyScale)
}
