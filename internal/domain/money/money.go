// Package money holds the fixed-point helpers used for balances and amounts.
// Every monetary value carries two fractional digits.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount
const Scale = 2

var (
	// MaxAmount is the largest magnitude accepted for an amount or initial balance
	MaxAmount = decimal.RequireFromString("99999999.99")

	hundred = decimal.NewFromInt(100)

	// Plain notation only. Exponents would make later rescaling allocate 10^|exp|.
	plainAmount = regexp.MustCompile(`^-?[0-9]{1,15}(\.[0-9]{1,10})?$`)
)

// Parse reads a decimal string and rejects values with more than two fractional digits.
func Parse(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	if !plainAmount.MatchString(value) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: use plain decimal notation", value)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if !HasValidScale(d) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", value, Scale)
	}
	return d, nil
}

// HasValidScale reports whether d has no more than two fractional digits
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// WithinLimit reports whether |d| <= MaxAmount
func WithinLimit(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// Format renders d with exactly two fractional digits
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// ToCents converts d to an integer number of cents. d must have a valid scale.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).IntPart()
}

// FromCents converts an integer number of cents back to a decimal
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Scale)
}

// Sum adds every value in ds
func Sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
