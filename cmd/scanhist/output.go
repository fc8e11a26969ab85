package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"scanhist/internal/format"
	"scanhist/internal/models"
	"scanhist/internal/store"
)

const listContentWidth = 48

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func formatScanLine(scan models.ScanSummary, now time.Time) string {
	content := scan.Content
	if content == "" {
		content = "(binary)"
	}
	content = truncate(strings.ReplaceAll(content, "\n", " "), listContentWidth)
	return fmt.Sprintf("%6d  %s  %-12s  %s  (%s)",
		scan.ID, scan.Time.Format(store.TimeLayout), scan.Format, content, humanize.RelTime(scan.Time, now, "ago", "from now"))
}

func writeScanDetail(scan models.Scan) error {
	lines := []string{
		fmt.Sprintf("id: %d", scan.ID),
		fmt.Sprintf("time: %s", scan.Time.Format(store.TimeLayout)),
		fmt.Sprintf("format: %s", scan.Format),
	}
	if scan.IsBinary() {
		lines = append(lines,
			fmt.Sprintf("raw: %s", humanize.Bytes(uint64(len(scan.Raw)))),
			fmt.Sprintf("digest: %s", scan.RawDigest()),
		)
	} else {
		lines = append(lines, fmt.Sprintf("content: %s", scan.Content))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
