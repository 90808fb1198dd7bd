package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/model"
	"github.com/daybook-dev/daybook/internal/money"
)

// amountFlags are the --income and --expense flags of add and edit.
type amountFlags struct {
	income  []string
	expense []string
}

func (f *amountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.income, "income", nil, "income as Category=amount, repeatable")
	cmd.Flags().StringArrayVar(&f.expense, "expense", nil, "expense as Category=amount, repeatable")
}

func (f *amountFlags) parse() (model.Amounts, model.Amounts, error) {
	income, err := parseAmounts(f.income)
	if err != nil {
		return nil, nil, fmt.Errorf("--income: %w", err)
	}
	expense, err := parseAmounts(f.expense)
	if err != nil {
		return nil, nil, fmt.Errorf("--expense: %w", err)
	}
	return income, expense, nil
}

func newAddCommand(opts *options) *cobra.Command {
	var amounts amountFlags
	var opening string

	cmd := &cobra.Command{
		Use:   "add <dd-mm-yyyy>",
		Short: "Book a new day",
		Long: "Book a new day. Categories left out count as zero. The first day of a\n" +
			"ledger needs --opening, the balance the ledger starts from.",
		Example: "  daybook add 01-01-2024 --income Cash=100 --expense Deposited=40 --opening 0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := day.Parse(args[0])
			if err != nil {
				return err
			}
			income, expense, err := amounts.parse()
			if err != nil {
				return err
			}
			p := ledger.AddDayParams{Date: d, Income: income, Expense: expense}
			if cmd.Flags().Changed("opening") {
				v, err := money.Parse(opening)
				if err != nil {
					return fmt.Errorf("--opening: %w", err)
				}
				p.Opening = &v
			}

			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			rec, err := l.AddDay(cmd.Context(), p)
			if errors.Is(err, ledger.ErrSeedRequired) {
				return fmt.Errorf("%w, pass --opening", err)
			}
			if err != nil {
				return err
			}
			cur := e.cfg.Ledger.Currency
			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s: opening %s, income %s, expense %s, closing %s\n",
				rec.Date,
				money.Format(rec.Balance.Opening, cur),
				money.Format(rec.Balance.IncomeTotal, cur),
				money.Format(rec.Balance.ExpenseTotal, cur),
				money.Format(rec.Balance.Closing, cur))
			return nil
		},
	}

	amounts.register(cmd)
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance of the first day")

	return cmd
}

func newEditCommand(opts *options) *cobra.Command {
	var amounts amountFlags

	cmd := &cobra.Command{
		Use:   "edit <dd-mm-yyyy>",
		Short: "Replace the amounts of a booked day",
		Long: "Replace the amounts of a booked day. Categories left out count as zero;\n" +
			"the balances of every later day are updated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := day.Parse(args[0])
			if err != nil {
				return err
			}
			income, expense, err := amounts.parse()
			if err != nil {
				return err
			}

			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := l.EditDay(cmd.Context(), d, income, expense)
			if err != nil {
				return err
			}
			rec, _ := l.Find(d)
			cur := e.cfg.Ledger.Currency
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: closing %s\n", d, money.Format(rec.Balance.Closing, cur))
			if later := laterDays(records, d); later > 0 {
				latest := records[len(records)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "%d later day(s) rebalanced, final balance %s\n",
					later, money.Format(latest.Balance.Closing, cur))
			}
			return nil
		},
	}

	amounts.register(cmd)

	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <dd-mm-yyyy>",
		Short: "Remove a booked day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := day.Parse(args[0])
			if err != nil {
				return err
			}

			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, ok := l.Find(d); !ok {
				return fmt.Errorf("%w: %s", ledger.ErrNotFound, d)
			}
			if !yes {
				answer, err := readLine(cmd, fmt.Sprintf("Delete %s? (yes/no): ", d))
				if err != nil {
					return err
				}
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "yes" && a != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return nil
				}
			}

			records, err := l.DeleteDay(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, %d day(s) left\n", d, len(records))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func laterDays(records []model.Record, d day.Day) int {
	n := 0
	for _, r := range records {
		if r.Date.After(d) {
			n++
		}
	}
	return n
}
