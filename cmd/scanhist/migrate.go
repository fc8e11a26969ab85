package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		dryRun  bool
		inspect bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade or inspect the history database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspect || dryRun {
				return withRawDB(cfg.DBPath, func(db *sql.DB) error {
					plan, err := store.MigrationPlan(db)
					if err != nil {
						return fmt.Errorf("inspect migrations: %w", err)
					}
					if *jsonOutput {
						return writeJSON(plan)
					}
					return writeMigrationPlan(plan)
				})
			}

			if err := withStore(cfg, func(*store.Store) error { return nil }); err != nil {
				return err
			}
			if !*jsonOutput {
				return writePlain("History database is at schema version %d.\n", store.SchemaVersion)
			}
			return withRawDB(cfg.DBPath, func(db *sql.DB) error {
				plan, err := store.MigrationPlan(db)
				if err != nil {
					return err
				}
				return writeJSON(plan)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func withRawDB(path string, fn func(*sql.DB) error) error {
	db, err := store.OpenRaw(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func writeMigrationPlan(plan *store.MigrationStatus) error {
	if err := writePlain("Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain("No pending migrations.\n")
	}
	if err := writePlain("Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain("  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}
