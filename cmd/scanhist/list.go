package main

import (
	"time"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				if *jsonOutput {
					scans, err := st.ListScans(cmd.Context())
					if err != nil {
						return err
					}
					if limit > 0 && len(scans) > limit {
						scans = scans[:limit]
					}
					return writeJSON(scans)
				}

				cur, err := st.Scans(cmd.Context())
				if err != nil {
					return err
				}
				defer cur.Close()

				now := time.Now()
				n := 0
				for cur.Next() {
					if limit > 0 && n >= limit {
						break
					}
					if err := writePlain("%s\n", formatScanLine(cur.Summary(), now)); err != nil {
						return err
					}
					n++
				}
				if err := cur.Err(); err != nil {
					return err
				}
				if n == 0 {
					return writePlain("No scans.\n")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n scans (0 = all)")

	return cmd
}
