package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/buildinfo"
)

// options holds the global flags shared by every subcommand.
type options struct {
	home     string
	user     string
	password string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "daybook",
		Short:   "Personal daily ledger with a running balance",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.home, "home", "", "daybook home directory (default $DAYBOOK_HOME or .)")
	flags.StringVar(&opts.user, "user", "", "user name (default $DAYBOOK_USER)")
	flags.StringVar(&opts.password, "password", "", "password (default $DAYBOOK_PASSWORD)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newUserCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newShowCommand(opts),
		newSummaryCommand(opts),
		newCheckCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newBackupCommand(opts),
	)

	return rootCmd
}
