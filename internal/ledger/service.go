package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/log"
	"github.com/daybook-dev/daybook/internal/model"
)

// Session identifies the authenticated user an operation runs for.
type Session struct {
	User string
}

// Validate rejects sessions without a user name.
func (s Session) Validate() error {
	if strings.TrimSpace(s.User) == "" {
		return errors.New("session has no user")
	}
	return nil
}

// Snapshot is the persisted state of one user's ledger.
type Snapshot struct {
	Seed    decimal.Decimal
	Records []model.Record
	Skipped []error // rows the loader could not read
}

// Repository loads and stores whole ledgers. Save must be all-or-nothing:
// either the full snapshot is written or the previous state is left untouched.
type Repository interface {
	Load(ctx context.Context, user string) (Snapshot, error)
	Save(ctx context.Context, user string, snap Snapshot) error
}

// Mutation describes a persisted change, for observers.
type Mutation struct {
	User      string
	Operation string
	Date      day.Day
	Closing   decimal.Decimal
	Days      int
	Details   string
}

// Observer is told about every mutation after it has been persisted.
type Observer interface {
	LedgerChanged(ctx context.Context, m Mutation) error
}

// Service opens ledgers from a repository.
type Service struct {
	repo       Repository
	categories model.Categories
	logger     *log.Logger
	observers  []Observer
}

// NewService creates a ledger Service.
func NewService(repo Repository, categories model.Categories, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger.WithComponent(log.ComponentLedger),
	}
}

// Observe registers an observer for persisted mutations.
func (s *Service) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// Categories returns the configured category lists.
func (s *Service) Categories() model.Categories { return s.categories }

// Open loads the session user's ledger. Unreadable rows and duplicate dates
// are skipped and logged; persisted balances are cross-checked, then the
// whole chain is recomputed.
func (s *Service) Open(ctx context.Context, sess Session) (*Ledger, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.repo.Load(ctx, sess.User)
	if err != nil {
		return nil, fmt.Errorf("loading ledger for %s: %w", sess.User, err)
	}

	lg := s.logger.With(log.FieldUser, sess.User)
	for _, e := range snap.Skipped {
		lg.Warn("skipped unreadable row", log.FieldError, e)
	}

	store, dups := NewStore(snap.Records)
	for _, e := range dups {
		lg.Warn("skipped duplicate day", log.FieldError, e)
	}

	issues := CheckChain(store.records, snap.Seed)
	for _, e := range issues {
		lg.Warn("persisted balance mismatch", log.FieldError, e)
	}

	for i := range store.records {
		store.records[i].RecomputeTotals()
	}
	store.propagate(0, snap.Seed)

	skipped := append(append([]error(nil), snap.Skipped...), dups...)
	lg.Debug("ledger loaded", log.FieldDays, store.Len())

	return &Ledger{
		svc:     s,
		session: sess,
		store:   store,
		seed:    snap.Seed,
		issues:  issues,
		skipped: skipped,
	}, nil
}

// Ledger is one user's ledger, loaded and kept consistent in memory.
type Ledger struct {
	svc     *Service
	session Session
	store   *Store
	seed    decimal.Decimal
	issues  []ValidationError
	skipped []error
}

// Session returns the session the ledger was opened for.
func (l *Ledger) Session() Session { return l.session }

// Seed returns the opening balance of the earliest day.
func (l *Ledger) Seed() decimal.Decimal { return l.seed }

// Len returns the number of booked days.
func (l *Ledger) Len() int { return l.store.Len() }

// Records returns the booked days in date order.
func (l *Ledger) Records() []model.Record { return l.store.Records() }

// Find returns the record for d.
func (l *Ledger) Find(d day.Day) (model.Record, bool) {
	r, _, ok := l.store.Find(d)
	return r, ok
}

// Issues returns the balance mismatches found in the persisted data at load time.
func (l *Ledger) Issues() []ValidationError { return l.issues }

// Skipped returns the rows that could not be loaded.
func (l *Ledger) Skipped() []error { return l.skipped }

// AddDayParams holds the input of AddDay.
type AddDayParams struct {
	Date    day.Day
	Income  model.Amounts
	Expense model.Amounts
	// Opening is the initial balance. Required for the first-ever day,
	// ignored otherwise.
	Opening *decimal.Decimal
}

// AddDay books a new day and returns it with its balances.
func (l *Ledger) AddDay(ctx context.Context, p AddDayParams) (model.Record, error) {
	if p.Date.IsZero() {
		return model.Record{}, ValidationError{Rule: RuleDate, Description: "date is required"}
	}
	income, expense, err := l.normalize(p.Date, p.Income, p.Expense)
	if err != nil {
		return model.Record{}, err
	}
	if _, _, ok := l.store.Find(p.Date); ok {
		return model.Record{}, fmt.Errorf("%w: %s", ErrDuplicateDate, p.Date)
	}

	rec := model.Record{Date: p.Date, Income: income, Expense: expense}
	rec.RecomputeTotals()

	seed := l.seed
	if latest, ok := l.store.Latest(); ok {
		rec.Balance.Opening = latest.Balance.Closing
		if p.Opening != nil {
			l.svc.logger.Warn("opening balance ignored, ledger already has days",
				log.FieldUser, l.session.User, log.FieldDate, p.Date.String())
		}
	} else {
		if p.Opening == nil {
			return model.Record{}, ErrSeedRequired
		}
		seed = *p.Opening
		rec.Balance.Opening = seed
	}
	rec.Balance.Closing = rec.Balance.Opening.Add(rec.Balance.Net())

	work := l.store.Clone()
	if _, err := work.Insert(rec); err != nil {
		return model.Record{}, err
	}
	work.propagate(0, seed)

	if err := l.commit(ctx, work, seed, log.OpAdd, p.Date); err != nil {
		return model.Record{}, err
	}
	out, _, _ := l.store.Find(p.Date)
	return out, nil
}

// EditDay replaces the category amounts of an existing day and cascades the
// new balance to every later day.
func (l *Ledger) EditDay(ctx context.Context, d day.Day, income, expense model.Amounts) ([]model.Record, error) {
	in, out, err := l.normalize(d, income, expense)
	if err != nil {
		return nil, err
	}
	rec, i, ok := l.store.Find(d)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, d)
	}
	rec.Income = in
	rec.Expense = out
	rec.RecomputeTotals()

	work := l.store.Clone()
	work.set(i, rec)
	work.propagate(i, l.seed)

	if err := l.commit(ctx, work, l.seed, log.OpEdit, d); err != nil {
		return nil, err
	}
	return l.store.Records(), nil
}

// DeleteDay removes a day; its successor is re-seeded from its former predecessor.
func (l *Ledger) DeleteDay(ctx context.Context, d day.Day) ([]model.Record, error) {
	work := l.store.Clone()
	i, err := work.Remove(d)
	if err != nil {
		return nil, err
	}
	seed := l.seed
	if work.Len() == 0 {
		seed = decimal.Zero
	}
	work.propagate(i, seed)

	if err := l.commit(ctx, work, seed, log.OpDelete, d); err != nil {
		return nil, err
	}
	return l.store.Records(), nil
}

// MergeResult reports what Merge did.
type MergeResult struct {
	Added      []day.Day
	Duplicates []day.Day
}

// Merge adds records for days not booked yet, in a single persisted
// operation. Days already present are left alone and reported. When the
// ledger is empty, the opening balance of the earliest merged record becomes
// the initial balance.
func (l *Ledger) Merge(ctx context.Context, records []model.Record) (MergeResult, error) {
	var res MergeResult
	incoming, dups := NewStore(records)
	for _, e := range dups {
		l.svc.logger.Warn("duplicate day in merged records", log.FieldError, e)
	}

	work := l.store.Clone()
	seed := l.seed
	if work.Len() == 0 && incoming.Len() > 0 {
		seed = incoming.records[0].Balance.Opening
	}
	for _, r := range incoming.records {
		if r.HasDetail() {
			in, out, err := l.normalize(r.Date, r.Income, r.Expense)
			if err != nil {
				return MergeResult{}, err
			}
			r.Income, r.Expense = in, out
		}
		r.RecomputeTotals()
		if r.Balance.IncomeTotal.IsNegative() || r.Balance.ExpenseTotal.IsNegative() {
			return MergeResult{}, ValidationError{Rule: RuleAmount, Date: r.Date, Description: "totals must not be negative"}
		}
		if _, err := work.Insert(r); err != nil {
			if errors.Is(err, ErrDuplicateDate) {
				res.Duplicates = append(res.Duplicates, r.Date)
				continue
			}
			return MergeResult{}, err
		}
		res.Added = append(res.Added, r.Date)
	}
	if len(res.Added) == 0 {
		return res, nil
	}
	work.propagate(0, seed)

	if err := l.commit(ctx, work, seed, log.OpImport, res.Added[0]); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

// Summary aggregates the whole ledger.
type Summary struct {
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Closing      decimal.Decimal // closing balance of the latest day
	Days         int
	First        day.Day
	Last         day.Day
}

// Summarize returns all-time totals and the final balance, or ErrNoData.
func (l *Ledger) Summarize() (Summary, error) {
	if l.store.Len() == 0 {
		return Summary{}, ErrNoData
	}
	s := Summary{
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		Days:         l.store.Len(),
		First:        l.store.records[0].Date,
	}
	for _, r := range l.store.records {
		s.IncomeTotal = s.IncomeTotal.Add(r.Balance.IncomeTotal)
		s.ExpenseTotal = s.ExpenseTotal.Add(r.Balance.ExpenseTotal)
	}
	latest, _ := l.store.Latest()
	s.Closing = latest.Balance.Closing
	s.Last = latest.Date
	return s, nil
}

// Rows returns the flat export view of the ledger.
func (l *Ledger) Rows() []Row { return RowsOf(l.store.records) }

// Snapshot returns the current state in persisted form.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Seed: l.seed, Records: l.store.Records()}
}

func (l *Ledger) normalize(d day.Day, income, expense model.Amounts) (model.Amounts, model.Amounts, error) {
	in, err := l.normalizeKind(d, model.KindIncome, income)
	if err != nil {
		return nil, nil, err
	}
	out, err := l.normalizeKind(d, model.KindExpense, expense)
	if err != nil {
		return nil, nil, err
	}
	return in, out, nil
}

func (l *Ledger) normalizeKind(d day.Day, kind model.Kind, a model.Amounts) (model.Amounts, error) {
	cats := l.svc.categories
	out := make(model.Amounts, len(a))
	for name, v := range a {
		canon, ok := cats.Canonical(kind, name)
		if !ok {
			return nil, ValidationError{
				Rule:        RuleCategory,
				Date:        d,
				Description: fmt.Sprintf("unknown %s category %q (want one of %s)", kind, name, strings.Join(cats.List(kind), ", ")),
			}
		}
		if v.IsNegative() {
			return nil, ValidationError{
				Rule:        RuleAmount,
				Date:        d,
				Description: fmt.Sprintf("%s %q must not be negative, got %s", kind, canon, v),
			}
		}
		if _, dup := out[canon]; dup {
			return nil, ValidationError{
				Rule:        RuleCategory,
				Date:        d,
				Description: fmt.Sprintf("%s category %q given twice", kind, canon),
			}
		}
		out[canon] = v
	}
	return cats.Complete(kind, out), nil
}

// commit persists work and, on success only, makes it the ledger's state.
func (l *Ledger) commit(ctx context.Context, work *Store, seed decimal.Decimal, op string, d day.Day) error {
	snap := Snapshot{Seed: seed, Records: work.Records()}
	if err := l.svc.repo.Save(ctx, l.session.User, snap); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	l.store = work
	l.seed = seed

	m := Mutation{
		User:      l.session.User,
		Operation: op,
		Date:      d,
		Days:      work.Len(),
	}
	if r, _, ok := work.Find(d); ok {
		m.Closing = r.Balance.Closing
		m.Details = fmt.Sprintf("income %s expense %s", r.Balance.IncomeTotal.StringFixed(2), r.Balance.ExpenseTotal.StringFixed(2))
	} else if latest, ok := work.Latest(); ok {
		m.Closing = latest.Balance.Closing
	}

	l.svc.logger.InfoContext(ctx, "ledger updated",
		log.FieldOperation, op,
		log.FieldUser, l.session.User,
		log.FieldDate, d.String(),
		log.FieldClosing, m.Closing.StringFixed(2),
		log.FieldDays, m.Days)

	for _, o := range l.svc.observers {
		if err := o.LedgerChanged(ctx, m); err != nil {
			l.svc.logger.Warn("observer failed", log.FieldOperation, op, log.FieldError, err)
		}
	}
	return nil
}
