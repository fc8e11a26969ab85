package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:           "scanhist",
		Short:         "Scanhist keeps the history of scanned barcodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (overrides db_path)")

	cmd.AddCommand(
		newAddCmd(cfg, &jsonOutput),
		newListCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newRemoveCmd(cfg),
		newHasBinaryCmd(cfg, &jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newExportCmd(cfg, &jsonOutput),
		newImportCmd(cfg, &jsonOutput),
		newMigrateCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newChromeCmd(cfg, &jsonOutput),
	)

	return cmd
}
