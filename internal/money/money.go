// Package money parses user-entered amounts and formats ledger amounts for display.
package money

import (
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for input that is not a decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrNegativeAmount is returned by ParseNonNegative for amounts below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Parse reads a decimal amount typed by a user. Both "12.34" and "12,34" are
// accepted; an empty string is zero.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseNonNegative is Parse restricted to amounts >= 0.
func ParseNonNegative(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeAmount, d)
	}
	return d, nil
}

// Format renders d in the given ISO 4217 currency ("$1,234.50", "-$40.00").
// Unknown currency codes fall back to "1234.50 XYZ".
func Format(d decimal.Decimal, currency string) string {
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		if currency == "" {
			return d.StringFixed(2)
		}
		return d.StringFixed(2) + " " + currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, cur.Code).Display()
}
