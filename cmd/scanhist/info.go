package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

type infoResponse struct {
	DBPath        string `json:"db_path"`
	DBSize        int64  `json:"db_size"`
	SchemaVersion int    `json:"schema_version"`
	TotalScans    int    `json:"total_scans"`
	HasBinary     bool   `json:"has_binary"`
	IgnoreDupes   bool   `json:"ignore_consecutive_duplicates"`
}

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database and history info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				total, err := st.Count(cmd.Context())
				if err != nil {
					return err
				}
				hasBinary, err := st.HasBinaryData(cmd.Context())
				if err != nil {
					return err
				}
				resp := infoResponse{
					DBPath:        cfg.DBPath,
					SchemaVersion: store.SchemaVersion,
					TotalScans:    total,
					HasBinary:     hasBinary,
					IgnoreDupes:   cfg.History.IgnoreConsecutiveDuplicates(),
				}
				if fi, err := os.Stat(cfg.DBPath); err == nil {
					resp.DBSize = fi.Size()
				}

				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("db_path: %s\ndb_size: %s\nschema_version: %d\ntotal_scans: %d\nhas_binary: %t\nignore_consecutive_duplicates: %t\n",
					resp.DBPath, humanize.Bytes(uint64(resp.DBSize)), resp.SchemaVersion,
					resp.TotalScans, resp.HasBinary, resp.IgnoreDupes)
			})
		},
	}
}
