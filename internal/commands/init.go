package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/config"
	"github.com/daybook-dev/daybook/internal/gitops"
	"github.com/daybook-dev/daybook/internal/users"
)

func newInitCommand(opts *options) *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new daybook home",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.Home(opts.home)
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, !noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, withGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	// Create directory structure.
	dirs := []string{
		"ledgers",
		"logs",
		"exports",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := users.NewService(nil).Save(dir); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}

	// Credentials, secrets and generated files stay out of version control.
	gitignore := users.FileName + "\n.env\nexports/\n*.db\n*.db-journal\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	for _, keep := range []string{"ledgers", "import"} {
		if err := os.WriteFile(filepath.Join(dir, keep, ".gitkeep"), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	if !withGit {
		fmt.Fprintf(out, "Initialized daybook at %s\n", dir)
		return nil
	}

	if err := gitops.Init(ctx, dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.CommitAll(ctx, dir, "init: daybook home", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized daybook at %s (%s)\n", dir, hash)
	return nil
}
