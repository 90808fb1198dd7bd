// Package activity keeps an append-only CSV log of ledger changes.
package activity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/daybook-dev/daybook/internal/ledger"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	User      string
	Action    string
	Date      string // dd-mm-yyyy of the affected day
	Closing   string
	Details   string
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,user,action,date,closing,details"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "activity.csv"
	colTimestamp = 0
	colUser      = 1
	colAction    = 2
	colDate      = 3
	colClosing   = 4
	colDetails   = 5
)

// Path returns the activity log location in home.
func Path(home string) string {
	return filepath.Join(home, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colUser] = e.User
	row[colAction] = e.Action
	row[colDate] = e.Date
	row[colClosing] = e.Closing
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		User:      record[colUser],
		Action:    record[colAction],
		Date:      record[colDate],
		Closing:   record[colClosing],
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <home>/logs/activity.csv, creating the file and header if needed.
func Append(home string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(home, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(home)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <home>/logs/activity.csv.
// Returns an empty slice if the file does not exist.
func Read(home string) ([]Entry, error) {
	f, err := os.Open(Path(home))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder appends an entry for every persisted ledger mutation.
type Recorder struct {
	home string
	now  func() time.Time
}

// NewRecorder creates a Recorder writing under home.
func NewRecorder(home string) *Recorder {
	return &Recorder{home: home, now: time.Now}
}

// LedgerChanged implements ledger.Observer.
func (r *Recorder) LedgerChanged(_ context.Context, m ledger.Mutation) error {
	e := Entry{
		Timestamp: r.now().UTC().Truncate(time.Second),
		User:      m.User,
		Action:    m.Operation,
		Closing:   m.Closing.StringFixed(2),
		Details:   m.Details,
	}
	if !m.Date.IsZero() {
		e.Date = m.Date.String()
	}
	if e.Details == "" {
		e.Details = fmt.Sprintf("days=%d", m.Days)
	}
	return Append(r.home, []Entry{e})
}
