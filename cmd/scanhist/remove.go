package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

func newRemoveCmd(cfg *config.Config) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "rm <id> [<id>...]",
		Aliases: []string{"remove"},
		Short:   "Remove scans from the history",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return requireExactlyArgs(0, "--all takes no ids")(cmd, args)
			}
			if !all && len(args) == 0 {
				return requireExactlyArgs(1, "id is required (or --all)")(cmd, args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				if all {
					if err := st.RemoveScans(cmd.Context()); err != nil {
						return err
					}
					slog.Info("history cleared")
					return nil
				}
				for _, id := range ids {
					if err := st.RemoveScan(cmd.Context(), id); err != nil {
						return err
					}
					slog.Debug("scan removed", "id", id)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear the whole history")

	return cmd
}
