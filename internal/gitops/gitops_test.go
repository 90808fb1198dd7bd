package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(context.Background(), dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(context.Background(), dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))

	changed, err := HasChanges(ctx, dir)
	require.NoError(t, err)
	assert.True(t, changed)

	hash, err := CommitAll(ctx, dir, "init: test commit", "Test Author", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Equal(t, "init: test commit", gitLog(t, dir, "%s"))
	assert.Equal(t, "Test Author <test@example.com>", gitLog(t, dir, "%an <%ae>"))

	changed, err = HasChanges(ctx, dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCommitter(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()
	c := &Committer{Dir: dir, AuthorName: "Daybook", AuthorEmail: "daybook@localhost"}
	m := ledger.Mutation{User: "alice", Operation: "add", Date: day.New(2024, time.January, 1)}

	// Not a repository yet: nothing happens.
	require.NoError(t, c.LedgerChanged(ctx, m))

	require.NoError(t, Init(ctx, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.txt"), []byte("x"), 0o644))
	require.NoError(t, c.LedgerChanged(ctx, m))
	assert.Equal(t, "add: alice 01-01-2024", gitLog(t, dir, "%s"))

	// No changes: no empty commit.
	require.NoError(t, c.LedgerChanged(ctx, ledger.Mutation{User: "alice", Operation: "edit"}))
	assert.Equal(t, "add: alice 01-01-2024", gitLog(t, dir, "%s"))
}

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "import: bob", CommitMessage(ledger.Mutation{User: "bob", Operation: "import"}))
}
