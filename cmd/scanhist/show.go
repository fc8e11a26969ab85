package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

var errScanNotFound = errors.New("scan not found")

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var rawOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a scan",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				scan, err := st.GetScan(cmd.Context(), id)
				if err != nil {
					return err
				}
				if scan == nil {
					return fmt.Errorf("scan %d: %w", id, errScanNotFound)
				}
				if rawOnly {
					return writePayload(scan.Raw, scan.Content)
				}
				if *jsonOutput {
					return writeJSON(toScanRecord(*scan))
				}
				return writeScanDetail(*scan)
			})
		},
	}

	cmd.Flags().BoolVar(&rawOnly, "raw", false, "write only the payload (hex dump on a terminal)")

	return cmd
}

// writePayload writes the binary payload verbatim when stdout is piped and
// as a hex dump when it is a terminal.
func writePayload(raw []byte, content string) error {
	payload := raw
	if payload == nil {
		payload = []byte(content)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return writePlain("%s", hex.Dump(payload))
	}
	_, err := os.Stdout.Write(payload)
	return err
}
