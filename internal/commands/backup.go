package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-dev/daybook/internal/backup"
)

func newBackupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload the ledger to the configured S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := opts.openLedger(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s3cfg := e.cfg.Backup.S3
			b, err := backup.New(cmd.Context(), backup.Config{
				Bucket:    s3cfg.Bucket,
				Region:    s3cfg.Region,
				Endpoint:  s3cfg.Endpoint,
				Prefix:    s3cfg.Prefix,
				PathStyle: s3cfg.PathStyle,
			}, e.logger)
			if err != nil {
				return err
			}
			key, err := b.Upload(cmd.Context(), l.Session().User, l.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d day(s) to s3://%s/%s\n", l.Len(), s3cfg.Bucket, key)
			return nil
		},
	}
}
