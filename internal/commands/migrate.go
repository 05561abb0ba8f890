package commands

import (
	"github.com/spf13/cobra"

	"github.com/startificial/requireflow/internal/config"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate",
		Short:              "Bring the database schema up to the current version",
		Long:               "Backs up the existing database beside the original file, then recreates the schema at the current version.",
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, logger.IsService())

			db, err := store.Open(store.Config{DBPath: cfg.Database})
			if err != nil {
				return err
			}
			defer db.Close()

			return store.Migrate(db, cfg.Database, logger.Default())
		},
	}
}
