package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
)

func date(y, m, d int) day.Day {
	return day.New(y, time.Month(m), d)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testRows() []ledger.Row {
	return []ledger.Row{
		{Date: date(2024, 1, 1), Opening: dec("0"), IncomeTotal: dec("100"), ExpenseTotal: dec("40"), Closing: dec("60")},
		{Date: date(2024, 1, 3), Opening: dec("60"), IncomeTotal: dec("0"), ExpenseTotal: dec("80.5"), Closing: dec("-20.5")},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRows()))
	assert.Equal(t,
		"date,opening,income_total,expense_total,closing\n"+
			"01-01-2024,0.00,100.00,40.00,60.00\n"+
			"03-01-2024,60.00,0.00,80.50,-20.50\n",
		buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "date,opening,income_total,expense_total,closing\n", buf.String())
}

func TestReadCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRows()))

	rows, skipped, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)
	want := testRows()
	for i := range want {
		assert.Equal(t, want[i].Date, rows[i].Date)
		assert.True(t, want[i].Closing.Equal(rows[i].Closing), "closing row %d", i)
		assert.True(t, want[i].ExpenseTotal.Equal(rows[i].ExpenseTotal), "expense row %d", i)
	}
}

func TestReadCSV_NoHeaderISODatesAndBadRows(t *testing.T) {
	input := strings.Join([]string{
		"2024-02-01,10,5,0,15",
		"not-a-date,1,1,1,1",
		"03-02-2024,15,0,0",
		"04-02-2024,15,x,0,15",
		"05-02-2024,15,0,0,15",
	}, "\n")

	rows, skipped, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, date(2024, 2, 1), rows[0].Date)
	assert.Equal(t, date(2024, 2, 5), rows[1].Date)
	require.Len(t, skipped, 3)

	var pe *ledger.ParseError
	require.True(t, errors.As(skipped[0], &pe))
	assert.Equal(t, 2, pe.Line)
}

type fakeValues struct {
	cleared []string
	updated map[string][][]any
	err     error
}

func (f *fakeValues) Clear(_ context.Context, id, rng string) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, id+"/"+rng)
	return nil
}

func (f *fakeValues) Update(_ context.Context, id, rng string, values [][]any) error {
	if f.updated == nil {
		f.updated = make(map[string][][]any)
	}
	f.updated[id+"/"+rng] = values
	return nil
}

func TestSheetsExporter(t *testing.T) {
	fake := &fakeValues{}
	exp, err := NewSheetsExporter(fake, "sheet-id", "Ledger", nil)
	require.NoError(t, err)

	require.NoError(t, exp.Export(context.Background(), testRows()))

	assert.Equal(t, []string{"sheet-id/'Ledger'"}, fake.cleared)
	values, ok := fake.updated["sheet-id/'Ledger'!A1:E3"]
	require.True(t, ok, "updated ranges: %v", fake.updated)
	require.Len(t, values, 3)
	assert.Equal(t, []any{"date", "opening", "income_total", "expense_total", "closing"}, values[0])
	assert.Equal(t, []any{"03-01-2024", json.Number("60.00"), json.Number("0.00"), json.Number("80.50"), json.Number("-20.50")}, values[2])
}

func TestSheetsExporter_Errors(t *testing.T) {
	_, err := NewSheetsExporter(&fakeValues{}, "", "Ledger", nil)
	assert.Error(t, err)

	exp, err := NewSheetsExporter(&fakeValues{err: errors.New("403")}, "id", "", nil)
	require.NoError(t, err)
	err = exp.Export(context.Background(), testRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sheet1")
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "daybook.prom")
	sum := ledger.Summary{
		IncomeTotal:  dec("100"),
		ExpenseTotal: dec("120.5"),
		Closing:      dec("-20.5"),
		Days:         2,
	}
	require.NoError(t, WriteMetrics(path, "alice", sum))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `daybook_closing_balance{user="alice"} -20.5`)
	assert.Contains(t, text, `daybook_income_total{user="alice"} 100`)
	assert.Contains(t, text, `daybook_expense_total{user="alice"} 120.5`)
	assert.Contains(t, text, `daybook_days{user="alice"} 2`)
	assert.Contains(t, text, "# TYPE daybook_days gauge")
}
