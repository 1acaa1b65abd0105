package main

import (
	"fmt"
	"os"

	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/spf13/cobra"
)

func newInitConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config.yaml holding the default settings",
		Example: `  softdeskctl init-config --out /etc/softdesk/config.yaml
  softdeskctl init-config --db-driver postgres --db-dsn "host=db user=softdesk dbname=softdesk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}

			cfg := config.DefaultConfig()
			if opts.driver != "" {
				cfg.Database.Driver = opts.driver
			}
			if opts.dsn != "" {
				cfg.Database.DSN = opts.dsn
			}
			if err := cfg.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "config.yaml", "Destination file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
