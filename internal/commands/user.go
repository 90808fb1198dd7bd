package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/users"
)

func newUserCommand(opts *options) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the users allowed to keep a ledger",
	}
	userCmd.AddCommand(newUserRegisterCommand(opts), newUserPasswdCommand(opts))
	return userCmd
}

func newUserRegisterCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new user",
		Long:  "Register a new user. The password comes from --password or $DAYBOOK_PASSWORD, else it is read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := opts.homeDir()
			if err != nil {
				return err
			}
			password := opts.userPassword()
			if password == "" {
				if password, err = readLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			svc, err := users.Load(home)
			if err != nil {
				return err
			}
			if err := svc.Register(args[0], password); err != nil {
				return err
			}
			if err := svc.Save(home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", args[0])
			return nil
		},
	}
}

func newUserPasswdCommand(opts *options) *cobra.Command {
	var newPassword string

	cmd := &cobra.Command{
		Use:   "passwd <name>",
		Short: "Change a user's password",
		Long:  "Change a user's password. The current password comes from --password or $DAYBOOK_PASSWORD.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := opts.homeDir()
			if err != nil {
				return err
			}
			svc, err := users.Load(home)
			if err != nil {
				return err
			}
			if err := svc.Authenticate(args[0], opts.userPassword()); err != nil {
				return err
			}
			if newPassword == "" {
				if newPassword, err = readLine(cmd, "New password: "); err != nil {
					return err
				}
			}
			if err := svc.ChangePassword(args[0], newPassword); err != nil {
				return err
			}
			if err := svc.Save(home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password changed for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password (read from stdin when empty)")

	return cmd
}
