// Package export writes ledger rows to CSV files, Google Sheets and
// Prometheus textfiles.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/money"
)

// Header is the CSV header written by WriteCSV.
var Header = []string{"date", "opening", "income_total", "expense_total", "closing"}

const (
	numFields  = 5
	colDate    = 0
	colOpening = 1
	colIncome  = 2
	colExpense = 3
	colClosing = 4
)

// WriteCSV writes a header and one line per row.
func WriteCSV(w io.Writer, rows []ledger.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a row to CSV fields.
func MarshalRow(r ledger.Row) []string {
	row := make([]string, numFields)
	row[colDate] = r.Date.String()
	row[colOpening] = r.Opening.StringFixed(2)
	row[colIncome] = r.IncomeTotal.StringFixed(2)
	row[colExpense] = r.ExpenseTotal.StringFixed(2)
	row[colClosing] = r.Closing.StringFixed(2)
	return row
}

// ReadCSV reads a file written by WriteCSV. The header is optional; dates may
// be dd-mm-yyyy or yyyy-mm-dd. Malformed rows are skipped and returned as
// *ledger.ParseError values.
func ReadCSV(r io.Reader) ([]ledger.Row, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows    []ledger.Row
		skipped []error
		first   = true
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped = append(skipped, &ledger.ParseError{Line: pe.Line, Err: pe.Err})
				continue
			}
			return nil, nil, fmt.Errorf("reading CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Header[colDate]) {
				continue
			}
		}
		row, err := UnmarshalRow(rec)
		if err != nil {
			skipped = append(skipped, &ledger.ParseError{Line: line, Text: strings.Join(rec, ","), Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// UnmarshalRow converts CSV fields to a row.
func UnmarshalRow(rec []string) (ledger.Row, error) {
	if len(rec) != numFields {
		return ledger.Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}
	d, err := parseDate(rec[colDate])
	if err != nil {
		return ledger.Row{}, err
	}
	row := ledger.Row{Date: d}
	if row.Opening, err = money.Parse(rec[colOpening]); err != nil {
		return ledger.Row{}, err
	}
	if row.IncomeTotal, err = money.Parse(rec[colIncome]); err != nil {
		return ledger.Row{}, err
	}
	if row.ExpenseTotal, err = money.Parse(rec[colExpense]); err != nil {
		return ledger.Row{}, err
	}
	if row.Closing, err = money.Parse(rec[colClosing]); err != nil {
		return ledger.Row{}, err
	}
	return row, nil
}

func parseDate(s string) (day.Day, error) {
	if d, err := day.Parse(s); err == nil {
		return d, nil
	}
	return day.ParseISO(s)
}
