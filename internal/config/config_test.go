package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-dev/daybook/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ledger.Backend = BackendSQLite
	cfg.Ledger.Currency = "USD"
	cfg.Categories = model.Categories{Income: []string{"Sales"}, Expense: []string{"Rent", "Stock"}}
	cfg.Export.Sheets = SheetsConfig{SpreadsheetID: "abc", SheetName: "Daily", CredentialsFile: "sa.json"}
	cfg.Backup.S3 = S3Config{Bucket: "backups", Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Ledger, got.Ledger)
	assert.Equal(t, cfg.Categories, got.Categories)
	assert.Equal(t, cfg.Export, got.Export)
	assert.Equal(t, cfg.Backup, got.Backup)
	assert.Equal(t, cfg.Git, got.Git)
	assert.Equal(t, cfg.Log, got.Log)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendFile, cfg.Ledger.Backend)
	assert.Equal(t, "EUR", cfg.Ledger.Currency)
	assert.Equal(t, model.DefaultCategories(), cfg.Categories)
	assert.True(t, cfg.Git.AutoCommit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadHome_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadHome(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Ledger.Backend)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  backend: sqlite\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Ledger.Backend)
	assert.Equal(t, "daybook.db", cfg.Ledger.SQLitePath)
	assert.Equal(t, model.DefaultCategories(), cfg.Categories)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Ledger.Backend = "postgres"
	cfg.Categories.Income = nil
	cfg.Categories.Expense = []string{"Rent", "rent", "a=b"}
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `ledger.backend "postgres"`)
	assert.Contains(t, msg, "categories.income must not be empty")
	assert.Contains(t, msg, `"rent" is listed twice`)
	assert.Contains(t, msg, `"a=b" must not contain`)
	assert.Contains(t, msg, "log.level")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvLogLevel {
			return "debug", true
		}
		return "", false
	})
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestHome(t *testing.T) {
	t.Setenv(EnvHome, "/srv/daybook")
	assert.Equal(t, "/from/flag", Home("/from/flag"))
	assert.Equal(t, "/srv/daybook", Home(""))

	t.Setenv(EnvHome, "")
	assert.Equal(t, ".", Home(""))
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/home/x", "daybook.db"), cfg.SQLitePath("/home/x"))
	cfg.Ledger.SQLitePath = "/var/lib/daybook.db"
	assert.Equal(t, "/var/lib/daybook.db", cfg.SQLitePath("/home/x"))
	assert.Equal(t, filepath.Join("/home/x", "exports", "daybook.prom"), cfg.MetricsPath("/home/x"))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "backend: file")
	assert.Contains(t, contents, "currency: EUR")
	assert.Contains(t, contents, "- Card terminal")
	assert.Contains(t, contents, "auto_commit: true")
}
