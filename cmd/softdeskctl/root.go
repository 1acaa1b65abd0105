package main

import (
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	driver     string
	dsn        string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "softdeskctl",
		Short:         "SoftDesk administration CLI",
		Long:          `Administrative tasks for a SoftDesk deployment: config scaffolding, schema migration, account creation and maintenance purges.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.driver, "db-driver", "", "Override the database driver (sqlite, mysql, postgres)")
	root.PersistentFlags().StringVar(&opts.dsn, "db-dsn", "", "Override the database DSN")

	root.AddCommand(
		newMigrateCmd(opts),
		newCreateUserCmd(opts),
		newCleanupCmd(opts),
		newInitConfigCmd(opts),
	)
	return root
}

// load reads the configuration with flag overrides applied.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	logger.Init(cfg.Log.Level, "console")
	return cfg, nil
}

// open connects to the configured database and migrates it.
func (o *globalOptions) open() (*config.Config, *gorm.DB, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	db, err := models.Open(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := models.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
