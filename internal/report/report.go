// Package report builds markdown views of a ledger and renders them for the
// terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/model"
	"github.com/daybook-dev/daybook/internal/money"
)

// History renders one table line per booked day.
func History(rows []ledger.Row, currency string) string {
	var b strings.Builder
	b.WriteString("# Ledger history\n\n")
	if len(rows) == 0 {
		b.WriteString("_No days booked yet._\n")
		return b.String()
	}
	table(&b, []string{"Date", "Opening", "Income", "Expense", "Closing"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.Date.String(),
			money.Format(r.Opening, currency),
			money.Format(r.IncomeTotal, currency),
			money.Format(r.ExpenseTotal, currency),
			money.Format(r.Closing, currency),
		}
	})
	return b.String()
}

// Day renders the balances and per-category amounts of one day.
func Day(rec model.Record, cats model.Categories, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Date)
	fmt.Fprintf(&b, "- Opening: **%s**\n", money.Format(rec.Balance.Opening, currency))
	fmt.Fprintf(&b, "- Income: %s\n", money.Format(rec.Balance.IncomeTotal, currency))
	fmt.Fprintf(&b, "- Expense: %s\n", money.Format(rec.Balance.ExpenseTotal, currency))
	fmt.Fprintf(&b, "- Closing: **%s**\n\n", money.Format(rec.Balance.Closing, currency))

	if !rec.HasDetail() {
		b.WriteString("_Only totals are stored for this day._\n")
		return b.String()
	}
	categoryTable(&b, "Income", cats.Complete(model.KindIncome, rec.Income), currency)
	categoryTable(&b, "Expense", cats.Complete(model.KindExpense, rec.Expense), currency)
	return b.String()
}

// Summary renders all-time totals.
func Summary(user string, s ledger.Summary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary for %s\n\n", user)
	fmt.Fprintf(&b, "%d days booked, %s to %s.\n\n", s.Days, s.First, s.Last)
	table(&b, []string{"", "Amount"}, 4, func(i int) []string {
		return [][]string{
			{"Total income", money.Format(s.IncomeTotal, currency)},
			{"Total expense", money.Format(s.ExpenseTotal, currency)},
			{"Net", money.Format(s.IncomeTotal.Sub(s.ExpenseTotal), currency)},
			{"Final balance", "**" + money.Format(s.Closing, currency) + "**"},
		}[i]
	})
	return b.String()
}

// Issues renders the problems found in persisted data.
func Issues(issues []ledger.ValidationError, skipped []error) string {
	var b strings.Builder
	b.WriteString("# Ledger check\n\n")
	if len(issues) == 0 && len(skipped) == 0 {
		b.WriteString("No problems found.\n")
		return b.String()
	}
	if len(skipped) > 0 {
		b.WriteString("## Skipped rows\n\n")
		for _, e := range skipped {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}
	if len(issues) > 0 {
		b.WriteString("## Balance mismatches\n\n")
		table(&b, []string{"Date", "Rule", "Problem"}, len(issues), func(i int) []string {
			return []string{issues[i].Date.String(), issues[i].Rule, issues[i].Description}
		})
		b.WriteString("\nStored balances were recomputed; the next change rewrites them.\n")
	}
	return b.String()
}

func categoryTable(b *strings.Builder, title string, a model.Amounts, currency string) {
	names := a.Names()
	table(b, []string{title, "Amount"}, len(names)+1, func(i int) []string {
		if i == len(names) {
			return []string{"**Total**", "**" + money.Format(a.Total(), currency) + "**"}
		}
		return []string{names[i], money.Format(a[names[i]], currency)}
	})
	b.WriteString("\n")
}

func table(b *strings.Builder, header []string, n int, row func(i int) []string) {
	writeRow(b, header)
	sep := make([]string, len(header))
	for i := range sep {
		if i == 0 {
			sep[i] = "---"
		} else {
			sep[i] = "---:"
		}
	}
	writeRow(b, sep)
	for i := 0; i < n; i++ {
		writeRow(b, row(i))
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// Render formats markdown for a terminal. Style is a glamour standard style
// name ("dark", "light", "notty", ...); empty picks one from the terminal.
func Render(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
