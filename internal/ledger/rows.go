package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/model"
)

// Row is the flat, format-neutral export view of one ledger day.
type Row struct {
	Date         day.Day
	Opening      decimal.Decimal
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Closing      decimal.Decimal
}

// RowsOf flattens records into export rows, keeping their order.
func RowsOf(records []model.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Date:         r.Date,
			Opening:      r.Balance.Opening,
			IncomeTotal:  r.Balance.IncomeTotal,
			ExpenseTotal: r.Balance.ExpenseTotal,
			Closing:      r.Balance.Closing,
		}
	}
	return rows
}

// Record turns a row back into a record without category detail.
func (r Row) Record() model.Record {
	return model.Record{
		Date: r.Date,
		Balance: model.Balance{
			Opening:      r.Opening,
			IncomeTotal:  r.IncomeTotal,
			ExpenseTotal: r.ExpenseTotal,
			Closing:      r.Closing,
		},
	}
}
