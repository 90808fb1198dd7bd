package historyfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/model"
)

func TestRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewRepository(t.TempDir(), nil)
	snap, err := repo.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
	assert.True(t, snap.Seed.IsZero())
}

func TestRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	repo := NewRepository(home, nil)

	snap := ledger.Snapshot{
		Seed: dec("250"),
		Records: []model.Record{
			row(date(2024, 1, 1), "250", "10", "0", "260"),
			row(date(2024, 1, 2), "260", "0", "5", "255"),
		},
	}
	require.NoError(t, repo.Save(ctx, "alice", snap))

	path, err := repo.Path("alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ledgers", "alice", "history.txt"), path)

	got, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Seed.Equal(dec("250")))
	require.Len(t, got.Records, 2)
	assert.True(t, got.Records[1].Balance.Closing.Equal(dec("255")))

	other, err := repo.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, other.Records)
}

func TestRepository_SeedFromEarliestRow(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, "ledgers", "alice")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "05-01-2024;70;0;0;70\n01-01-2024;40;30;0;70\nnot a row\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	snap, err := NewRepository(home, nil).Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, snap.Seed.Equal(dec("40")))
	assert.Len(t, snap.Records, 2)
	assert.Len(t, snap.Skipped, 1)
}

func TestRepository_RejectsPathLikeUsers(t *testing.T) {
	repo := NewRepository(t.TempDir(), nil)
	for _, u := range []string{"", "..", "a/b", `a\b`} {
		_, err := repo.Load(context.Background(), u)
		assert.Error(t, err, "user %q", u)
	}
}

func TestRepository_WithLedgerService(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	cats := model.Categories{Income: []string{"A"}, Expense: []string{"B"}}

	svc := ledger.NewService(NewRepository(home, nil), cats, nil)
	l, err := svc.Open(ctx, ledger.Session{User: "alice"})
	require.NoError(t, err)
	opening := dec("0")
	_, err = l.AddDay(ctx, ledger.AddDayParams{
		Date:    date(2024, 1, 1),
		Income:  model.Amounts{"A": dec("100")},
		Expense: model.Amounts{"B": dec("40")},
		Opening: &opening,
	})
	require.NoError(t, err)
	_, err = l.AddDay(ctx, ledger.AddDayParams{Date: date(2024, 1, 3), Income: model.Amounts{"A": dec("50")}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "ledgers", "alice", FileName))
	require.NoError(t, err)
	assert.Equal(t, "01-01-2024;0.00;100.00;40.00;60.00\n03-01-2024;60.00;50.00;0.00;110.00\n", string(data))

	reopened, err := svc.Open(ctx, ledger.Session{User: "alice"})
	require.NoError(t, err)
	assert.Empty(t, reopened.Issues())
	assert.Equal(t, 2, reopened.Len())
}

func TestRepository_BadLineKeepsLaterDaysThroughSave(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	dir := filepath.Join(home, "ledgers", "alice")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "01-01-2024;0.00;100.00;40.00;60.00\n" +
		"\"junk;1;2;3\n" +
		"03-01-2024;60.00;50.00;0.00;110.00\n" +
		"04-01-2024;110.00;5.00;0.00;115.00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cats := model.Categories{Income: []string{"A"}, Expense: []string{"B"}}
	svc := ledger.NewService(NewRepository(home, nil), cats, nil)
	l, err := svc.Open(ctx, ledger.Session{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.Len(t, l.Skipped(), 1)

	_, err = l.AddDay(ctx, ledger.AddDayParams{Date: date(2024, 1, 5), Income: model.Amounts{"A": dec("1")}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t,
		"01-01-2024;0.00;100.00;40.00;60.00\n"+
			"03-01-2024;60.00;50.00;0.00;110.00\n"+
			"04-01-2024;110.00;5.00;0.00;115.00\n"+
			"05-01-2024;115.00;1.00;0.00;116.00\n",
		string(data))
}
