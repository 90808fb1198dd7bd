package importer

import (
	"io"

	"github.com/daybook-dev/daybook/internal/export"
	"github.com/daybook-dev/daybook/internal/historyfile"
	"github.com/daybook-dev/daybook/internal/model"
)

// HistoryParser reads semicolon-separated history files.
type HistoryParser struct{}

// Format returns the parser name.
func (p *HistoryParser) Format() string { return "history" }

// Extensions returns the history file extensions.
func (p *HistoryParser) Extensions() []string { return []string{".txt"} }

// Parse reads a history file.
func (p *HistoryParser) Parse(r io.Reader) (Result, error) {
	records, skipped, err := historyfile.ReadRecords(r)
	if err != nil {
		return Result{}, err
	}
	return Result{Records: records, Skipped: skipped}, nil
}

// CSVParser reads files written by the CSV exporter.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the CSV file extensions.
func (p *CSVParser) Extensions() []string { return []string{".csv"} }

// Parse reads a CSV export.
func (p *CSVParser) Parse(r io.Reader) (Result, error) {
	rows, skipped, err := export.ReadCSV(r)
	if err != nil {
		return Result{}, err
	}
	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	return Result{Records: records, Skipped: skipped}, nil
}
