package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestAmountsTotal(t *testing.T) {
	a := Amounts{"Cash": dec("10.10"), "Payconiq": dec("0.20"), "Card terminal": dec("5")}
	assert.True(t, a.Total().Equal(dec("15.30")))
	assert.True(t, Amounts(nil).Total().IsZero())
}

func TestRecomputeTotals(t *testing.T) {
	r := Record{
		Income:  Amounts{"Cash": dec("100")},
		Expense: Amounts{"Deposited": dec("40"), "Paid invoices": dec("2.5")},
	}
	r.RecomputeTotals()
	assert.True(t, r.Balance.IncomeTotal.Equal(dec("100")))
	assert.True(t, r.Balance.ExpenseTotal.Equal(dec("42.5")))
	assert.True(t, r.Balance.Net().Equal(dec("57.5")))
}

func TestRecomputeTotals_NoDetailKeepsTotals(t *testing.T) {
	r := Record{Balance: Balance{IncomeTotal: dec("12"), ExpenseTotal: dec("3")}}
	r.RecomputeTotals()
	assert.True(t, r.Balance.IncomeTotal.Equal(dec("12")))
	assert.True(t, r.Balance.ExpenseTotal.Equal(dec("3")))
}

func TestCloneIsDeep(t *testing.T) {
	r := Record{Income: Amounts{"Cash": dec("1")}}
	c := r.Clone()
	c.Income["Cash"] = dec("2")
	assert.True(t, r.Income["Cash"].Equal(dec("1")))
	assert.Nil(t, Record{}.Clone().Expense)
}

func TestCategoriesCanonical(t *testing.T) {
	cats := DefaultCategories()

	name, ok := cats.Canonical(KindIncome, "  cash ")
	require.True(t, ok)
	assert.Equal(t, "Cash", name)

	_, ok = cats.Canonical(KindIncome, "Deposited")
	assert.False(t, ok, "Deposited is an expense category only")

	name, ok = cats.Canonical(KindExpense, "deposited")
	require.True(t, ok)
	assert.Equal(t, "Deposited", name)
}

func TestCategoriesComplete(t *testing.T) {
	cats := DefaultCategories()
	got := cats.Complete(KindExpense, Amounts{"Payconiq": dec("3")})

	assert.Len(t, got, len(cats.Expense))
	assert.True(t, got["Payconiq"].Equal(dec("3")))
	assert.True(t, got["Deposited"].IsZero())
	assert.Equal(t, []string{"Card terminal", "Deposited", "Outstanding invoices", "Paid invoices", "Payconiq"}, got.Names())
}
