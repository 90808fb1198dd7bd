package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/model"
)

// Propagate sorts records by date, then recomputes Opening and Closing for
// every record from start to the end. The record before start supplies the
// opening balance; at position 0 the opening balance is seed.
//
// Only the balances are touched: IncomeTotal and ExpenseTotal are inputs.
func Propagate(records []model.Record, start int, seed decimal.Decimal) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	if start < 0 {
		start = 0
	}
	for i := start; i < len(records); i++ {
		opening := seed
		if i > 0 {
			opening = records[i-1].Balance.Closing
		}
		b := &records[i].Balance
		b.Opening = opening
		b.Closing = opening.Add(b.IncomeTotal).Sub(b.ExpenseTotal)
	}
}
