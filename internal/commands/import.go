package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/importer"
	"github.com/daybook-dev/daybook/internal/ledger"
)

func newImportCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Merge days from a history file or CSV export into the ledger",
		Long: "Merge days from a history file or CSV export into the ledger. Days that\n" +
			"are already booked are skipped. Without a file, every known file in\n" +
			"<home>/import is imported and moved to import/processed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			registry := importer.DefaultRegistry()
			if len(args) > 0 {
				return importFile(cmd, l, registry, args[0], format)
			}

			files, err := registry.Scan(e.home)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
				return nil
			}
			for _, f := range files {
				if err := importFile(cmd, l, registry, f.Path, format); err != nil {
					return err
				}
				if err := importer.MarkProcessed(e.home, f.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "input format: history or csv (default from the file extension)")

	return cmd
}

func importFile(cmd *cobra.Command, l *ledger.Ledger, registry *importer.Registry, path, format string) error {
	res, err := registry.ParseFile(path, format)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	for _, e := range res.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: skipped %v\n", name, e)
	}

	merged, err := l.Merge(cmd.Context(), res.Records)
	if err != nil {
		return fmt.Errorf("importing %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d day(s) added, %d already booked\n",
		name, len(merged.Added), len(merged.Duplicates))
	if len(merged.Duplicates) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  already booked: %s\n", joinDays(merged.Duplicates))
	}
	return nil
}

func joinDays(days []day.Day) string {
	s := make([]string, len(days))
	for i, d := range days {
		s[i] = d.String()
	}
	return strings.Join(s, ", ")
}
