package model

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/day"
)

// Amounts maps a category name to the amount booked on it for one day.
type Amounts map[string]decimal.Decimal

// Total returns the sum of all amounts.
func (a Amounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range a {
		total = total.Add(v)
	}
	return total
}

// Clone returns a copy of a. A nil map stays nil.
func (a Amounts) Clone() Amounts {
	if a == nil {
		return nil
	}
	out := make(Amounts, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Names returns the category names in lexical order.
func (a Amounts) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Balance holds the four figures of one ledger day. Only IncomeTotal and
// ExpenseTotal are inputs; Opening and Closing are derived by propagation.
type Balance struct {
	Opening      decimal.Decimal
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Closing      decimal.Decimal
}

// Net returns IncomeTotal - ExpenseTotal.
func (b Balance) Net() decimal.Decimal {
	return b.IncomeTotal.Sub(b.ExpenseTotal)
}

// Record is one day in the ledger.
type Record struct {
	Date    day.Day
	Income  Amounts // nil when only totals were persisted
	Expense Amounts // nil when only totals were persisted
	Balance Balance
}

// HasDetail reports whether the record carries category-level amounts.
func (r Record) HasDetail() bool {
	return r.Income != nil || r.Expense != nil
}

// RecomputeTotals refreshes IncomeTotal and ExpenseTotal from the category
// maps. Records without category detail keep their persisted totals.
func (r *Record) RecomputeTotals() {
	if !r.HasDetail() {
		return
	}
	r.Balance.IncomeTotal = r.Income.Total()
	r.Balance.ExpenseTotal = r.Expense.Total()
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Income = r.Income.Clone()
	r.Expense = r.Expense.Clone()
	return r
}
