package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/activity"
	"github.com/daybook-dev/daybook/internal/config"
	"github.com/daybook-dev/daybook/internal/gitops"
	"github.com/daybook-dev/daybook/internal/historyfile"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
	"github.com/daybook-dev/daybook/internal/storage"
	"github.com/daybook-dev/daybook/internal/users"
)

// renderWidth is the word-wrap width for rendered reports.
const renderWidth = 100

// env is what a command needs once the home and its config are resolved.
type env struct {
	home    string
	cfg     *config.Config
	logger  *log.Logger
	service *ledger.Service
	closers []func() error
}

// Close releases the storage backend.
func (e *env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (o *options) homeDir() (string, error) {
	home, err := filepath.Abs(config.Home(o.home))
	if err != nil {
		return "", fmt.Errorf("resolving home: %w", err)
	}
	return home, nil
}

func (o *options) userName() string {
	if o.user != "" {
		return strings.TrimSpace(o.user)
	}
	return strings.TrimSpace(os.Getenv(config.EnvUser))
}

func (o *options) userPassword() string {
	if o.password != "" {
		return o.password
	}
	return os.Getenv(config.EnvPassword)
}

// setup loads the config and wires the ledger service with its storage
// backend and observers.
func (o *options) setup(cmd *cobra.Command) (*env, error) {
	home, err := o.homeDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadHome(home)
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})

	e := &env{home: home, cfg: cfg, logger: logger}
	var repo ledger.Repository
	switch cfg.Ledger.Backend {
	case config.BackendSQLite:
		db, err := storage.NewSQLiteRepository(cfg.SQLitePath(home), logger)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, db.Close)
		repo = db
	default:
		repo = historyfile.NewRepository(home, logger)
	}
	logger.Debug("storage ready", log.FieldBackend, cfg.Ledger.Backend, log.FieldPath, home)

	e.service = ledger.NewService(repo, cfg.Categories, logger)
	e.service.Observe(activity.NewRecorder(home))
	if cfg.Git.AutoCommit {
		e.service.Observe(&gitops.Committer{
			Dir:         home,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
			Logger:      logger,
		})
	}
	return e, nil
}

// authenticate checks the global user and password against the credential
// store and returns the session to run ledger operations with.
func (o *options) authenticate(home string) (ledger.Session, error) {
	name := o.userName()
	if name == "" {
		return ledger.Session{}, fmt.Errorf("no user given (pass --user or set %s)", config.EnvUser)
	}
	creds, err := users.Load(home)
	if err != nil {
		return ledger.Session{}, err
	}
	if err := creds.Authenticate(name, o.userPassword()); err != nil {
		return ledger.Session{}, err
	}
	return ledger.Session{User: name}, nil
}

// openLedger sets up the environment, authenticates and loads the user's
// ledger. Callers must Close the returned env.
func (o *options) openLedger(cmd *cobra.Command) (*env, *ledger.Ledger, error) {
	e, err := o.setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	sess, err := o.authenticate(e.home)
	if err != nil {
		_ = e.Close()
		return nil, nil, err
	}
	l, err := e.service.Open(cmd.Context(), sess)
	if err != nil {
		_ = e.Close()
		return nil, nil, err
	}
	if n := len(l.Issues()) + len(l.Skipped()); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d problem(s) in stored data, run 'daybook check'\n", n)
	}
	return e, l, nil
}

// readLine prints prompt and reads one line from the command's input.
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
