package ledger

import (
	"errors"
	"fmt"

	"github.com/daybook-dev/daybook/internal/day"
)

var (
	// ErrDuplicateDate is returned when adding a day that is already booked.
	ErrDuplicateDate = errors.New("a record for this date already exists")
	// ErrNotFound is returned when editing or deleting a day that is not booked.
	ErrNotFound = errors.New("no record for this date")
	// ErrSeedRequired is returned when the first-ever day is added without an opening balance.
	ErrSeedRequired = errors.New("opening balance required for the first entry")
	// ErrNoData is returned by Summarize on an empty ledger.
	ErrNoData = errors.New("ledger has no records")
)

// ParseError describes a persisted row that could not be read. Loaders skip
// such rows and report them instead of failing.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Validation rules.
const (
	RuleDate     = "date"
	RuleCategory = "category"
	RuleAmount   = "amount"
	RuleOpening  = "opening"
	RuleClosing  = "closing"
	RuleTotals   = "totals"
)

// ValidationError describes rejected input or a broken balance chain.
type ValidationError struct {
	Rule        string
	Date        day.Day
	Description string
}

func (e ValidationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("%s: %s", e.Rule, e.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.Date, e.Description)
}
