// Package commands wires configuration, storage and the HTTP API into the
// requireflow CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/startificial/requireflow/internal/config"
	"github.com/startificial/requireflow/internal/logger"
)

// Execute runs the CLI. Errors are already logged by the failing command.
func Execute(version string) error {
	logger.Init(config.DefaultLogLevel, logger.IsService())

	root := &cobra.Command{
		Use:           "requireflow",
		Short:         "Requirement capture and generation service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Configuration flags (--log-level, --database, ...) are parsed
		// by the config package, not by cobra.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}
