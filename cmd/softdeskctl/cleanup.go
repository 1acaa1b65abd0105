package main

import (
	"fmt"

	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/spf13/cobra"
)

func newCleanupCmd(opts *globalOptions) *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired refresh tokens and old audit logs now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("retention-days") {
				cfg.Maintenance.LogRetentionDays = retentionDays
			}

			maintenance := services.NewMaintenanceService(db, &cfg.Maintenance, services.NewAuthService(db, &cfg.JWT))
			report, err := maintenance.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] purged %d refresh tokens and %d audit logs\n", report.RefreshTokens, report.AuditLogs)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Override the audit log retention window")
	return cmd
}
