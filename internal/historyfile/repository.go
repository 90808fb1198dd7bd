package historyfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/daybook-dev/daybook/internal/atomicfile"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
	"github.com/daybook-dev/daybook/internal/model"
)

// FileName is the name of a user's history file.
const FileName = "history.txt"

// Repository stores each user's ledger at <home>/ledgers/<user>/history.txt.
type Repository struct {
	home   string
	logger *log.Logger
}

// NewRepository creates a file-backed ledger repository rooted at home.
func NewRepository(home string, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Discard()
	}
	return &Repository{home: home, logger: logger.WithComponent(log.ComponentStorage)}
}

// Path returns the history file location for user.
func (r *Repository) Path(user string) (string, error) {
	if err := checkUser(user); err != nil {
		return "", err
	}
	return filepath.Join(r.home, "ledgers", user, FileName), nil
}

// Load reads the user's history. A missing file is an empty ledger. The seed
// is the opening balance of the earliest day.
func (r *Repository) Load(_ context.Context, user string) (ledger.Snapshot, error) {
	path, err := r.Path(user)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.Snapshot{Seed: decimal.Zero}, nil
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	records, skipped, err := ReadRecords(f)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	r.logger.Debug("history read", log.FieldPath, path, log.FieldDays, len(records), log.FieldOperation, log.OpLoad)
	return ledger.Snapshot{Seed: earliestOpening(records), Records: records, Skipped: skipped}, nil
}

// Save rewrites the user's history in one step.
func (r *Repository) Save(_ context.Context, user string, snap ledger.Snapshot) error {
	path, err := r.Path(user)
	if err != nil {
		return err
	}
	err = atomicfile.Write(path, 0o644, func(w io.Writer) error {
		return WriteRecords(w, snap.Records)
	})
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	r.logger.Debug("history written", log.FieldPath, path, log.FieldDays, len(snap.Records), log.FieldOperation, log.OpSave)
	return nil
}

func earliestOpening(records []model.Record) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	first := records[0]
	for _, rec := range records[1:] {
		if rec.Date.Before(first.Date) {
			first = rec
		}
	}
	return first.Balance.Opening
}

func checkUser(user string) error {
	if user == "" || user == "." || user == ".." || strings.ContainsAny(user, `/\`) {
		return fmt.Errorf("invalid user name %q", user)
	}
	return nil
}
