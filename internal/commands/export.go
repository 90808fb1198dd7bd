package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/atomicfile"
	"github.com/daybook-dev/daybook/internal/export"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
)

func newExportCommand(opts *options) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger",
	}
	exportCmd.AddCommand(
		newExportCSVCommand(opts),
		newExportSheetsCommand(opts),
		newExportMetricsCommand(opts),
	)
	return exportCmd
}

func newExportCSVCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			rows := l.Rows()
			if out == "" || out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), rows)
			}
			if err := atomicfile.Write(out, 0o644, func(w io.Writer) error {
				return export.WriteCSV(w, rows)
			}); err != nil {
				return err
			}
			logExport(e, l, "csv", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d day(s) to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newExportSheetsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Replace the configured Google Sheet with the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			sc := e.cfg.Export.Sheets
			values, err := export.NewGoogleValues(cmd.Context(), sc.CredentialsFile)
			if err != nil {
				return err
			}
			exp, err := export.NewSheetsExporter(values, sc.SpreadsheetID, sc.SheetName, e.logger)
			if err != nil {
				return err
			}
			rows := l.Rows()
			if err := exp.Export(cmd.Context(), rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d day(s) to spreadsheet %s\n", len(rows), sc.SpreadsheetID)
			return nil
		},
	}
}

func newExportMetricsCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Write balance gauges for the node exporter textfile collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s, err := l.Summarize()
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = e.cfg.MetricsPath(e.home)
			}
			if err := export.WriteMetrics(path, l.Session().User, s); err != nil {
				return err
			}
			logExport(e, l, "metrics", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote metrics to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default export.metrics_file)")

	return cmd
}

func logExport(e *env, l *ledger.Ledger, format, path string) {
	e.logger.WithComponent(log.ComponentExport).Info("ledger exported",
		log.FieldOperation, log.OpExport,
		log.FieldUser, l.Session().User,
		"format", format,
		log.FieldPath, path,
		log.FieldDays, l.Len())
}
