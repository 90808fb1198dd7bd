package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
)

// ValuesWriter is the part of the Sheets values API the exporter needs.
type ValuesWriter interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

// SheetsExporter replaces the contents of one sheet with the ledger rows.
type SheetsExporter struct {
	values        ValuesWriter
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// NewSheetsExporter creates an exporter writing to sheet in spreadsheetID.
func NewSheetsExporter(values ValuesWriter, spreadsheetID, sheet string, logger *log.Logger) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("export.sheets.spreadsheet_id is not configured")
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SheetsExporter{
		values:        values,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

// Export clears the sheet and writes a header plus one line per row.
func (e *SheetsExporter) Export(ctx context.Context, rows []ledger.Row) error {
	all := fmt.Sprintf("'%s'", e.sheet)
	if err := e.values.Clear(ctx, e.spreadsheetID, all); err != nil {
		return fmt.Errorf("clear sheet %s: %w", e.sheet, err)
	}

	values := SheetValues(rows)
	rng := fmt.Sprintf("'%s'!A1:E%d", e.sheet, len(values))
	if err := e.values.Update(ctx, e.spreadsheetID, rng, values); err != nil {
		return fmt.Errorf("update sheet %s: %w", e.sheet, err)
	}
	e.logger.InfoContext(ctx, "rows exported to sheet", "sheet", e.sheet, log.FieldDays, len(rows), log.FieldOperation, log.OpExport)
	return nil
}

// SheetValues lays rows out as a header line followed by one line per day.
// Amounts are JSON numbers so the sheet treats them as numeric cells.
func SheetValues(rows []ledger.Row) [][]any {
	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, []any{
			r.Date.String(),
			json.Number(r.Opening.StringFixed(2)),
			json.Number(r.IncomeTotal.StringFixed(2)),
			json.Number(r.ExpenseTotal.StringFixed(2)),
			json.Number(r.Closing.StringFixed(2)),
		})
	}
	return values
}

// GoogleValues implements ValuesWriter on the Sheets API.
type GoogleValues struct {
	svc *gsheet.Service
}

// NewGoogleValues authenticates with a service account. The credentials file
// falls back to GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleValues(ctx context.Context, credentialsFile string) (*GoogleValues, error) {
	path := strings.TrimSpace(credentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set export.sheets.credentials_file or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleValues{svc: svc}, nil
}

// Clear empties rng.
func (g *GoogleValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// Update writes values to rng as entered.
func (g *GoogleValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
