package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tells income categories from expense categories.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Categories is the fixed category list for each kind.
type Categories struct {
	Income  []string `yaml:"income"`
	Expense []string `yaml:"expense"`
}

// DefaultCategories returns the category lists of a small shop till: card
// terminal and mobile payments, invoices and cash.
func DefaultCategories() Categories {
	return Categories{
		Income:  []string{"Card terminal", "Payconiq", "Open invoices", "Cash"},
		Expense: []string{"Card terminal", "Payconiq", "Outstanding invoices", "Paid invoices", "Deposited"},
	}
}

// List returns the names configured for kind.
func (c Categories) List(kind Kind) []string {
	if kind == KindIncome {
		return c.Income
	}
	return c.Expense
}

// Canonical returns the configured spelling of name for kind, matching
// case-insensitively.
func (c Categories) Canonical(kind Kind, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, n := range c.List(kind) {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Complete returns a copy of a holding every category of kind, with missing
// categories set to zero.
func (c Categories) Complete(kind Kind, a Amounts) Amounts {
	out := make(Amounts, len(c.List(kind)))
	for _, n := range c.List(kind) {
		out[n] = decimal.Zero
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}
