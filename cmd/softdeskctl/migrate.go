package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Example: `  softdeskctl migrate
  softdeskctl migrate --db-driver postgres --db-dsn "host=db user=softdesk dbname=softdesk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.open()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
