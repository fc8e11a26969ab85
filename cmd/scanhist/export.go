package main

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/format"
	"scanhist/internal/models"
	"scanhist/internal/store"
)

func newExportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		outputPath string
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history as JSON, YAML or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *jsonOutput {
				formatName = "json"
			}
			return withStore(cfg, func(st *store.Store) error {
				scans, err := st.AllScans(cmd.Context())
				if err != nil {
					return err
				}

				var w io.Writer = os.Stdout
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return exportScans(w, formatName, scans)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&formatName, "format", "json", "json, yaml or csv")

	return cmd
}

func exportScans(w io.Writer, formatName string, scans []models.Scan) error {
	if formatName == "csv" {
		return exportCSV(w, scans)
	}
	formatter, err := format.ByName(formatName)
	if err != nil {
		return err
	}
	records := make([]scanRecord, 0, len(scans))
	for _, scan := range scans {
		records = append(records, toScanRecord(scan))
	}
	return formatter.Write(w, records)
}

func exportCSV(w io.Writer, scans []models.Scan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "time", "content", "raw", "format"}); err != nil {
		return err
	}
	for _, scan := range scans {
		raw := ""
		if scan.Raw != nil {
			raw = hex.EncodeToString(scan.Raw)
		}
		row := []string{
			strconv.FormatInt(scan.ID, 10),
			scan.Time.Format(store.TimeLayout),
			scan.Content,
			raw,
			scan.Format,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write scan %d: %w", scan.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
