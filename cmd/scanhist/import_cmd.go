package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

type importResult struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Record decoded barcodes from a YAML or JSON file (- for stdin)",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readDecodeRecords(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				result, err := importRecords(cmd.Context(), st, records)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("Imported %d of %d scans (%d consecutive duplicates skipped).\n",
					result.Inserted, result.Read, result.Skipped)
			})
		},
	}

	return cmd
}

func importRecords(ctx context.Context, st store.ScanStore, records []decodeRecord) (importResult, error) {
	result := importResult{Read: len(records)}
	for i, rec := range records {
		inserted, err := importRecord(ctx, st, rec)
		if err != nil {
			return result, fmt.Errorf("record %d: %w", i+1, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	slog.Info("import finished", "read", result.Read, "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

func importRecord(ctx context.Context, st store.ScanStore, rec decodeRecord) (bool, error) {
	if rec.rawOnly() {
		scan, err := rec.scan()
		if err != nil {
			return false, err
		}
		_, inserted, err := st.RestoreScan(ctx, scan)
		return inserted, err
	}
	event, err := rec.event()
	if err != nil {
		return false, err
	}
	_, inserted, err := st.RecordScan(ctx, event)
	return inserted, err
}

func readDecodeRecords(path string) ([]decodeRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return parseDecodeRecords(data, strings.ToLower(filepath.Ext(path)))
}

func parseDecodeRecords(data []byte, ext string) ([]decodeRecord, error) {
	var records []decodeRecord
	if ext == ".json" {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return records, nil
	}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return records, nil
}
