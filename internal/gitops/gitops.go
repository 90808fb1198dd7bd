// Package gitops versions a daybook home with git.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
)

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// HasChanges reports whether the working tree differs from HEAD.
func HasChanges(ctx context.Context, dir string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(ctx context.Context, dir, message, authorName, authorEmail string) (string, error) {
	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)

	add := exec.CommandContext(ctx, "git", "add", "-A")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	commit := exec.CommandContext(ctx, "git", "commit", "--quiet", "-m", message, "--author", author)
	commit.Dir = dir
	commit.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+authorName,
		"GIT_COMMITTER_EMAIL="+authorEmail,
	)
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Committer commits the daybook home after every persisted ledger mutation.
type Committer struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
	Logger      *log.Logger
}

// LedgerChanged implements ledger.Observer. Homes that are not git
// repositories are left alone.
func (c *Committer) LedgerChanged(ctx context.Context, m ledger.Mutation) error {
	if !IsRepo(c.Dir) {
		return nil
	}
	changed, err := HasChanges(ctx, c.Dir)
	if err != nil || !changed {
		return err
	}
	hash, err := CommitAll(ctx, c.Dir, CommitMessage(m), c.AuthorName, c.AuthorEmail)
	if err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Debug("committed ledger change", log.FieldUser, m.User, "commit", hash)
	}
	return nil
}

// CommitMessage describes a mutation in one line, e.g. "add: alice 01-01-2024".
func CommitMessage(m ledger.Mutation) string {
	msg := fmt.Sprintf("%s: %s", m.Operation, m.User)
	if !m.Date.IsZero() {
		msg += " " + m.Date.String()
	}
	return msg
}
