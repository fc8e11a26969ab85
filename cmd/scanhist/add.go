package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"scanhist/internal/config"
	"scanhist/internal/models"
	"scanhist/internal/store"
)

func newAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		format  string
		rawHex  string
		atValue string
	)

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Record a decoded barcode",
		Args:  requireExactlyArgs(1, "text is required (use \"\" with --raw-hex for binary codes)"),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := buildDecodeEvent(args[0], format, rawHex, atValue)
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				id, err := st.InsertScan(cmd.Context(), event)
				if err != nil {
					return err
				}
				slog.Info("scan recorded", "id", id, "format", event.Format)
				if *jsonOutput {
					return writeJSON(map[string]int64{"id": id})
				}
				return writePlain("%d\n", id)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "QR_CODE", "barcode format")
	cmd.Flags().StringVar(&rawHex, "raw-hex", "", "raw payload as hex, used when the text is not printable")
	cmd.Flags().StringVar(&atValue, "at", "", "scan time as \"2006-01-02 15:04:05\" (default: now)")

	return cmd
}

func buildDecodeEvent(text, format, rawHex, atValue string) (models.DecodeEvent, error) {
	if format == "" {
		return models.DecodeEvent{}, fmt.Errorf("--format is required")
	}
	event := models.DecodeEvent{Time: time.Now(), Text: text, Format: format}

	if atValue != "" {
		at, err := time.ParseInLocation(store.TimeLayout, atValue, time.Local)
		if err != nil {
			return models.DecodeEvent{}, fmt.Errorf("invalid --at %q: %w", atValue, err)
		}
		event.Time = at
	}

	if rawHex != "" {
		raw, err := hex.DecodeString(rawHex)
		if err != nil {
			return models.DecodeEvent{}, fmt.Errorf("invalid --raw-hex: %w", err)
		}
		event.Raw = raw
		if event.Text == "" {
			event.Text = string(raw)
		}
	}
	return event, nil
}
