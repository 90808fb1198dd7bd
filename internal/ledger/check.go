package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/model"
)

// CheckChain verifies the balance chain of date-sorted records as they are,
// without fixing anything:
//
//   - the first opening balance equals seed, every later one equals the
//     previous closing balance;
//   - every closing balance equals opening + income - expense;
//   - records with category detail have totals matching their categories.
func CheckChain(records []model.Record, seed decimal.Decimal) []ValidationError {
	var errs []ValidationError

	prevClosing := seed
	for i, r := range records {
		b := r.Balance

		if !b.Opening.Equal(prevClosing) {
			want := "previous closing balance"
			if i == 0 {
				want = "initial balance"
			}
			errs = append(errs, ValidationError{
				Rule:        RuleOpening,
				Date:        r.Date,
				Description: fmt.Sprintf("opening %s != %s %s", b.Opening.StringFixed(2), want, prevClosing.StringFixed(2)),
			})
		}

		want := b.Opening.Add(b.IncomeTotal).Sub(b.ExpenseTotal)
		if !b.Closing.Equal(want) {
			errs = append(errs, ValidationError{
				Rule:        RuleClosing,
				Date:        r.Date,
				Description: fmt.Sprintf("closing %s != opening + income - expense %s", b.Closing.StringFixed(2), want.StringFixed(2)),
			})
		}

		if r.HasDetail() {
			if in := r.Income.Total(); !in.Equal(b.IncomeTotal) {
				errs = append(errs, ValidationError{
					Rule:        RuleTotals,
					Date:        r.Date,
					Description: fmt.Sprintf("income total %s != sum of categories %s", b.IncomeTotal.StringFixed(2), in.StringFixed(2)),
				})
			}
			if out := r.Expense.Total(); !out.Equal(b.ExpenseTotal) {
				errs = append(errs, ValidationError{
					Rule:        RuleTotals,
					Date:        r.Date,
					Description: fmt.Sprintf("expense total %s != sum of categories %s", b.ExpenseTotal.StringFixed(2), out.StringFixed(2)),
				})
			}
		}

		prevClosing = b.Closing
	}
	return errs
}
