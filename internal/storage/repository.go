// Package storage keeps ledgers in SQLite, including per-category amounts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
	"github.com/daybook-dev/daybook/internal/model"
)

const (
	kindIncome  = "income"
	kindExpense = "expense"
)

// SQLiteRepository implements ledger.Repository on a SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the user's ledger. Rows that cannot be decoded are reported in
// Snapshot.Skipped.
func (r *SQLiteRepository) Load(ctx context.Context, user string) (ledger.Snapshot, error) {
	snap := ledger.Snapshot{Seed: decimal.Zero}

	var seed string
	err := r.db.QueryRowContext(ctx, `SELECT seed FROM ledgers WHERE user = ?`, user).Scan(&seed)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load seed: %w", err)
	}
	if snap.Seed, err = decimal.NewFromString(seed); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode seed %q: %w", seed, err)
	}

	amounts, err := r.loadAmounts(ctx, user)
	if err != nil {
		return ledger.Snapshot{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT day, opening, income_total, expense_total, closing, detail
		FROM days WHERE user = ? ORDER BY day`, user)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		var (
			iso                               string
			opening, income, expense, closing string
			detail                            bool
		)
		if err := rows.Scan(&iso, &opening, &income, &expense, &closing, &detail); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("scan day: %w", err)
		}
		rec, err := decodeDay(iso, opening, income, expense, closing)
		if err != nil {
			snap.Skipped = append(snap.Skipped, &ledger.ParseError{Line: n, Text: iso, Err: err})
			continue
		}
		if detail {
			rec.Income = model.Amounts{}
			rec.Expense = model.Amounts{}
			for _, a := range amounts[iso] {
				if a.kind == kindIncome {
					rec.Income[a.category] = a.amount
				} else {
					rec.Expense[a.category] = a.amount
				}
			}
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("iterate days: %w", err)
	}

	r.logger.Debug("ledger read", log.FieldUser, user, log.FieldDays, len(snap.Records), log.FieldOperation, log.OpLoad)
	return snap, nil
}

type categoryAmount struct {
	kind     string
	category string
	amount   decimal.Decimal
}

func (r *SQLiteRepository) loadAmounts(ctx context.Context, user string) (map[string][]categoryAmount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, kind, category, amount
		FROM day_amounts WHERE user = ? ORDER BY day, kind, category`, user)
	if err != nil {
		return nil, fmt.Errorf("query day amounts: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]categoryAmount)
	for rows.Next() {
		var iso, kind, category, amount string
		if err := rows.Scan(&iso, &kind, &category, &amount); err != nil {
			return nil, fmt.Errorf("scan day amount: %w", err)
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("decode %s amount %q for %s: %w", category, amount, iso, err)
		}
		out[iso] = append(out[iso], categoryAmount{kind: kind, category: category, amount: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day amounts: %w", err)
	}
	return out, nil
}

func decodeDay(iso, opening, income, expense, closing string) (model.Record, error) {
	d, err := day.ParseISO(iso)
	if err != nil {
		return model.Record{}, err
	}
	var vals [4]decimal.Decimal
	for i, s := range []string{opening, income, expense, closing} {
		if vals[i], err = decimal.NewFromString(s); err != nil {
			return model.Record{}, fmt.Errorf("decode amount %q: %w", s, err)
		}
	}
	return model.Record{
		Date: d,
		Balance: model.Balance{
			Opening:      vals[0],
			IncomeTotal:  vals[1],
			ExpenseTotal: vals[2],
			Closing:      vals[3],
		},
	}, nil
}

// Save replaces the user's ledger inside one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, user string, snap ledger.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledgers (user, seed) VALUES (?, ?)
		ON CONFLICT(user) DO UPDATE SET seed = excluded.seed`, user, snap.Seed.String()); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM day_amounts WHERE user = ?`, user); err != nil {
		return fmt.Errorf("clear day amounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM days WHERE user = ?`, user); err != nil {
		return fmt.Errorf("clear days: %w", err)
	}

	dayStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO days (user, day, opening, income_total, expense_total, closing, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare day insert: %w", err)
	}
	defer dayStmt.Close()

	amountStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO day_amounts (user, day, kind, category, amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare amount insert: %w", err)
	}
	defer amountStmt.Close()

	for _, rec := range snap.Records {
		iso := rec.Date.ISO()
		b := rec.Balance
		if _, err := dayStmt.ExecContext(ctx, user, iso,
			b.Opening.String(), b.IncomeTotal.String(), b.ExpenseTotal.String(), b.Closing.String(),
			rec.HasDetail()); err != nil {
			return fmt.Errorf("insert day %s: %w", rec.Date, err)
		}
		for _, kind := range []string{kindIncome, kindExpense} {
			amounts := rec.Income
			if kind == kindExpense {
				amounts = rec.Expense
			}
			for _, name := range amounts.Names() {
				if _, err := amountStmt.ExecContext(ctx, user, iso, kind, name, amounts[name].String()); err != nil {
					return fmt.Errorf("insert %s %q for %s: %w", kind, name, rec.Date, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("ledger written", log.FieldUser, user, log.FieldDays, len(snap.Records), log.FieldOperation, log.OpSave)
	return nil
}
