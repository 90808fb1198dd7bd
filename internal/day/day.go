package day

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the dd-mm-yyyy format used in history files and on the command line.
const Layout = "02-01-2006"

// ISOLayout is the sortable form used by the SQLite backend.
const ISOLayout = "2006-01-02"

// Day is a calendar date with day-level granularity. The zero value is not a valid day.
type Day struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Day ("32-01-2024" becomes "01-02-2024").
func New(year int, month time.Month, d int) Day {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return FromTime(t)
}

// FromTime truncates t to its calendar day.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{y: y, m: m, d: d}
}

// Parse reads a strict dd-mm-yyyy date.
func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, want dd-mm-yyyy: %w", s, err)
	}
	return FromTime(t), nil
}

// ParseISO reads a yyyy-mm-dd date.
func ParseISO(s string) (Day, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, want yyyy-mm-dd: %w", s, err)
	}
	return FromTime(t), nil
}

func (d Day) Year() int         { return d.y }
func (d Day) Month() time.Month { return d.m }
func (d Day) Day() int          { return d.d }

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Time returns midnight UTC of d.
func (d Day) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// String formats d as dd-mm-yyyy.
func (d Day) String() string { return d.Time().Format(Layout) }

// ISO formats d as yyyy-mm-dd.
func (d Day) ISO() string { return d.Time().Format(ISOLayout) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Day) Compare(o Day) int {
	switch {
	case d.y != o.y:
		return cmpInt(d.y, o.y)
	case d.m != o.m:
		return cmpInt(int(d.m), int(o.m))
	default:
		return cmpInt(d.d, o.d)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
