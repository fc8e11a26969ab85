package main

import (
	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

func newHasBinaryCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "has-binary",
		Short: "Report whether any scan carries a raw payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				has, err := st.HasBinaryData(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]bool{"has_binary": has})
				}
				return writePlain("%t\n", has)
			})
		},
	}
}
