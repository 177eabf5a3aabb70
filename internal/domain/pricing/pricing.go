// Package pricing computes order money amounts. Every amount is an integer
// number of minor currency units (poisha); floating point is never used.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercent takes a percentage (0-100) of the subtotal.
	KindPercent Kind = "percent"
	// KindFixed takes a fixed minor-unit amount off the subtotal.
	KindFixed Kind = "fixed"
)

// Valid reports whether k is a known discount kind.
func (k Kind) Valid() bool {
	return k == KindPercent || k == KindFixed
}

// Rule describes how a discount is computed. Catalog coupons and synthesized
// special rewards both satisfy it.
type Rule interface {
	Kind() Kind
	Value() int64
}

// Line is a priced line item.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Breakdown is the result of pricing a set of lines.
type Breakdown struct {
	Subtotal int64
	Discount int64
	Total    int64
}

// Subtotal returns the sum of price * quantity over lines. Quantities are
// expected to be stock-validated already, so no clamping happens here.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPrice * int64(l.Quantity)
	}
	return sum
}

// Discount returns the discount for subtotal under rule. A nil rule yields 0.
//
// Percent discounts round half up: (subtotal*value + 50) / 100. Fixed
// discounts are returned as-is; only the total is floored at zero.
func Discount(subtotal int64, rule Rule) int64 {
	if rule == nil {
		return 0
	}
	switch rule.Kind() {
	case KindPercent:
		if subtotal <= 0 {
			return 0
		}
		return (subtotal*rule.Value() + 50) / 100
	case KindFixed:
		return rule.Value()
	default:
		return 0
	}
}

// Total returns max(0, subtotal - discount).
func Total(subtotal, discount int64) int64 {
	if t := subtotal - discount; t > 0 {
		return t
	}
	return 0
}

// Compute prices lines under rule.
func Compute(lines []Line, rule Rule) Breakdown {
	sub := Subtotal(lines)
	disc := Discount(sub, rule)
	return Breakdown{
		Subtotal: sub,
		Discount: disc,
		Total:    Total(sub, disc),
	}
}

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "৳"

// Format renders amount as a major-unit string, e.g. 1999 -> "৳19.99".
func Format(amount int64) string {
	return CurrencySymbol + decimal.New(amount, -2).StringFixed(2)
}

// ErrPrecision is returned by ParseMajor when the input has more precision
// than one minor unit.
var ErrPrecision = errors.New("amount has sub-minor precision")

// ParseMajor converts a major-unit decimal string ("19.99") into minor units
// (1999) without rounding. Negative amounts are rejected.
func ParseMajor(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return FromDecimal(d)
}

// FromDecimal converts a major-unit decimal into minor units exactly.
func FromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, errors.Errorf("negative amount %s", d)
	}
	minor := d.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrPrecision
	}
	return minor.IntPart(), nil
}
