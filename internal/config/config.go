package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/daybook-dev/daybook/internal/log"
	"github.com/daybook-dev/daybook/internal/model"
)

// FileName is the config file inside a daybook home.
const FileName = "daybook.yaml"

// Environment variables read on top of the config file.
const (
	EnvHome     = "DAYBOOK_HOME"
	EnvUser     = "DAYBOOK_USER"
	EnvPassword = "DAYBOOK_PASSWORD"
	EnvLogLevel = "DAYBOOK_LOG_LEVEL"
)

// Ledger storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the top-level daybook.yaml configuration.
type Config struct {
	Ledger     LedgerConfig     `yaml:"ledger"`
	Categories model.Categories `yaml:"categories"`
	Export     ExportConfig     `yaml:"export"`
	Backup     BackupConfig     `yaml:"backup"`
	Git        GitConfig        `yaml:"git"`
	Log        LogConfig        `yaml:"log"`
}

// LedgerConfig selects where ledgers are stored and how amounts are shown.
type LedgerConfig struct {
	Backend    string `yaml:"backend"`  // "file" or "sqlite"
	Currency   string `yaml:"currency"` // ISO 4217 code used for display
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// ExportConfig configures the non-file exporters.
type ExportConfig struct {
	Sheets      SheetsConfig `yaml:"sheets"`
	MetricsFile string       `yaml:"metrics_file,omitempty"`
}

// SheetsConfig points at the Google spreadsheet rows are exported to.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	SheetName       string `yaml:"sheet_name,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// BackupConfig holds backup targets.
type BackupConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a daybook.yaml file from disk. Sections left out of the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadHome reads <home>/daybook.yaml, falling back to defaults when the
// file does not exist, then applies environment overrides.
func LoadHome(home string) (*Config, error) {
	cfg, err := Load(filepath.Join(home, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new daybook.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Backend:    BackendFile,
			Currency:   "EUR",
			SQLitePath: "daybook.db",
		},
		Categories: model.DefaultCategories(),
		Export: ExportConfig{
			Sheets:      SheetsConfig{SheetName: "Ledger"},
			MetricsFile: filepath.Join("exports", "daybook.prom"),
		},
		Backup: BackupConfig{
			S3: S3Config{Prefix: "daybook"},
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Daybook",
			AuthorEmail: "daybook@localhost",
		},
		Log: LogConfig{Level: "info"},
	}
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Ledger.Backend {
	case BackendFile:
	case BackendSQLite:
		if strings.TrimSpace(c.Ledger.SQLitePath) == "" {
			errs = append(errs, errors.New("ledger.sqlite_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("ledger.backend %q must be %q or %q", c.Ledger.Backend, BackendFile, BackendSQLite))
	}
	if len(c.Categories.Income) == 0 {
		errs = append(errs, errors.New("categories.income must not be empty"))
	}
	if len(c.Categories.Expense) == 0 {
		errs = append(errs, errors.New("categories.expense must not be empty"))
	}
	errs = append(errs, checkNames("categories.income", c.Categories.Income)...)
	errs = append(errs, checkNames("categories.expense", c.Categories.Expense)...)
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func checkNames(field string, names []string) []error {
	var errs []error
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("%s contains an empty name", field))
		case strings.ContainsAny(n, "=,;"):
			errs = append(errs, fmt.Errorf("%s: %q must not contain '=', ',' or ';'", field, n))
		case seen[key]:
			errs = append(errs, fmt.Errorf("%s: %q is listed twice", field, n))
		}
		seen[key] = true
	}
	return errs
}

// SQLitePath resolves the database path against home.
func (c *Config) SQLitePath(home string) string {
	return resolve(home, c.Ledger.SQLitePath)
}

// MetricsPath resolves the metrics textfile path against home.
func (c *Config) MetricsPath(home string) string {
	return resolve(home, c.Export.MetricsFile)
}

func resolve(home, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// Home picks the daybook home: the flag value, else $DAYBOOK_HOME, else ".".
func Home(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(EnvHome); v != "" {
		return v
	}
	return "."
}
