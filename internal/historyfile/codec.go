// Package historyfile reads and writes a ledger as a plain history file, one
// day per line: dd-mm-yyyy;opening;income_total;expense_total;closing.
package historyfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/model"
	"github.com/daybook-dev/daybook/internal/money"
)

const (
	separator  = ";"
	numFields  = 5
	colDate    = 0
	colOpening = 1
	colIncome  = 2
	colExpense = 3
	colClosing = 4
)

var errFieldCount = errors.New("wrong number of fields")

// ReadRecords reads every well-formed line from r. Each line stands on its
// own: blank lines are ignored, malformed lines are skipped and returned as
// *ledger.ParseError values. Only I/O failures are fatal.
func ReadRecords(r io.Reader) ([]model.Record, []error, error) {
	br := bufio.NewReader(r)

	var (
		records []model.Record
		skipped []error
	)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("reading history: %w", err)
		}
		text := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(text) != "" {
			rec, perr := UnmarshalRecord(strings.Split(text, separator))
			if perr != nil {
				skipped = append(skipped, &ledger.ParseError{Line: n, Text: text, Err: perr})
			} else {
				records = append(records, rec)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return records, skipped, nil
}

// WriteRecords writes records in the given order, one line each.
func WriteRecords(w io.Writer, records []model.Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range records {
		if _, err := bw.WriteString(strings.Join(MarshalRecord(r), separator) + "\n"); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// MarshalRecord converts a record to its five history fields.
func MarshalRecord(r model.Record) []string {
	row := make([]string, numFields)
	row[colDate] = r.Date.String()
	row[colOpening] = formatAmount(r.Balance.Opening)
	row[colIncome] = formatAmount(r.Balance.IncomeTotal)
	row[colExpense] = formatAmount(r.Balance.ExpenseTotal)
	row[colClosing] = formatAmount(r.Balance.Closing)
	return row
}

// UnmarshalRecord converts history fields to a record without category detail.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("%w: expected %d, got %d", errFieldCount, numFields, len(row))
	}

	d, err := day.Parse(row[colDate])
	if err != nil {
		return model.Record{}, err
	}

	var amounts [numFields]decimal.Decimal
	for col := colOpening; col <= colClosing; col++ {
		if strings.TrimSpace(row[col]) == "" {
			return model.Record{}, fmt.Errorf("%w: empty field %d", money.ErrInvalidAmount, col+1)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(row[col]))
		if err != nil {
			return model.Record{}, fmt.Errorf("%w: %q", money.ErrInvalidAmount, row[col])
		}
		amounts[col] = v
	}

	return model.Record{
		Date: d,
		Balance: model.Balance{
			Opening:      amounts[colOpening],
			IncomeTotal:  amounts[colIncome],
			ExpenseTotal: amounts[colExpense],
			Closing:      amounts[colClosing],
		},
	}, nil
}

// formatAmount writes two decimals unless the value carries more precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}
