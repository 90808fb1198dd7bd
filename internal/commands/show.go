package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/report"
)

// output prints markdown as is, or rendered for the terminal.
func output(cmd *cobra.Command, markdown string, plain bool) error {
	if plain {
		_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
		return err
	}
	rendered, err := report.Render(markdown, "", renderWidth)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
	return err
}

func newShowCommand(opts *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show [dd-mm-yyyy]",
		Short: "Show the ledger history, or the detail of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d day.Day
			if len(args) > 0 {
				var err error
				if d, err = day.Parse(args[0]); err != nil {
					return err
				}
			}

			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			cur := e.cfg.Ledger.Currency
			if d.IsZero() {
				return output(cmd, report.History(l.Rows(), cur), plain)
			}
			rec, ok := l.Find(d)
			if !ok {
				return fmt.Errorf("%w: %s", ledger.ErrNotFound, d)
			}
			return output(cmd, report.Day(rec, e.cfg.Categories, cur), plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")

	return cmd
}

func newSummaryCommand(opts *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show all-time totals and the final balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s, err := l.Summarize()
			if errors.Is(err, ledger.ErrNoData) {
				fmt.Fprintln(cmd.OutOrStdout(), "No days booked yet.")
				return nil
			}
			if err != nil {
				return err
			}
			return output(cmd, report.Summary(l.Session().User, s, e.cfg.Ledger.Currency), plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")

	return cmd
}

func newCheckCommand(opts *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report rows and balances in stored data that do not add up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := output(cmd, report.Issues(l.Issues(), l.Skipped()), plain); err != nil {
				return err
			}
			if n := len(l.Issues()) + len(l.Skipped()); n > 0 {
				return fmt.Errorf("%d problem(s) found", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")

	return cmd
}
