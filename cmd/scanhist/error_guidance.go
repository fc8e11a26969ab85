package main

import (
	"context"
	"errors"
	"os"

	"scanhist/internal/store"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	if errors.Is(err, store.ErrUnavailable) {
		lines = append(lines,
			"hint: check that db_path points to a writable location (scanhist config get db_path).",
			"hint: override the location with --db or SCANHIST_DB.",
		)
		if os.Getenv("SCANHIST_DB") != "" {
			lines = append(lines, "hint: SCANHIST_DB is set and takes precedence over the config file.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, errScanNotFound) {
		lines = append(lines, "hint: list known ids with: scanhist list")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.Canceled) {
		lines = append(lines, "hint: the operation was interrupted; the history is unchanged past the last completed scan.")
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
