package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/model"
)

// Store is an in-memory, date-ordered collection of ledger records with at
// most one record per day. It never persists anything.
type Store struct {
	records []model.Record
}

// NewStore sorts records by date. A second record for an already seen date is
// dropped and reported.
func NewStore(records []model.Record) (*Store, []error) {
	sorted := make([]model.Record, len(records))
	for i, r := range records {
		sorted[i] = r.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var errs []error
	s := &Store{records: make([]model.Record, 0, len(sorted))}
	for _, r := range sorted {
		if n := len(s.records); n > 0 && s.records[n-1].Date == r.Date {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateDate, r.Date))
			continue
		}
		s.records = append(s.records, r)
	}
	return s, errs
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// search returns the position of d, or where it would be inserted.
func (s *Store) search(d day.Day) int {
	return sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Date.Before(d)
	})
}

// Find returns the record for d and its sorted position.
func (s *Store) Find(d day.Day) (model.Record, int, bool) {
	i := s.search(d)
	if i < len(s.records) && s.records[i].Date == d {
		return s.records[i].Clone(), i, true
	}
	return model.Record{}, -1, false
}

// Insert adds r at its sorted position and returns that position.
func (s *Store) Insert(r model.Record) (int, error) {
	i := s.search(r.Date)
	if i < len(s.records) && s.records[i].Date == r.Date {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateDate, r.Date)
	}
	s.records = append(s.records, model.Record{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = r.Clone()
	return i, nil
}

// Remove deletes the record for d and returns the position it occupied.
func (s *Store) Remove(d day.Day) (int, error) {
	_, i, ok := s.Find(d)
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, d)
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return i, nil
}

// Latest returns the chronologically last record.
func (s *Store) Latest() (model.Record, bool) {
	if len(s.records) == 0 {
		return model.Record{}, false
	}
	return s.records[len(s.records)-1].Clone(), true
}

// Records returns a deep copy of the records in date order.
func (s *Store) Records() []model.Record {
	out := make([]model.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns an independent copy of s.
func (s *Store) Clone() *Store {
	return &Store{records: s.Records()}
}

func (s *Store) set(i int, r model.Record) {
	s.records[i] = r.Clone()
}

func (s *Store) propagate(start int, seed decimal.Decimal) {
	Propagate(s.records, start, seed)
}
