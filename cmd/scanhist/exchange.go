package main

import (
	"encoding/base64"
	"fmt"
	"time"

	"scanhist/internal/models"
)

// scanRecord is the export shape of a scan. Raw payloads are base64.
type scanRecord struct {
	ID      int64     `json:"id" yaml:"id"`
	Time    time.Time `json:"time" yaml:"time"`
	Content string    `json:"content" yaml:"content"`
	Raw     string    `json:"raw,omitempty" yaml:"raw,omitempty"`
	Format  string    `json:"format" yaml:"format"`
}

// decodeRecord is one decoder result in an import file. Content is
// accepted in place of Text so exports can be imported again.
type decodeRecord struct {
	Time    time.Time `json:"time" yaml:"time"`
	Text    string    `json:"text" yaml:"text"`
	Content string    `json:"content,omitempty" yaml:"content,omitempty"`
	Raw     string    `json:"raw,omitempty" yaml:"raw,omitempty"`
	Format  string    `json:"format" yaml:"format"`
}

func toScanRecord(scan models.Scan) scanRecord {
	rec := scanRecord{
		ID:      scan.ID,
		Time:    scan.Time,
		Content: scan.Content,
		Format:  scan.Format,
	}
	if scan.Raw != nil {
		rec.Raw = base64.StdEncoding.EncodeToString(scan.Raw)
	}
	return rec
}

func (r decodeRecord) event() (models.DecodeEvent, error) {
	if r.Format == "" {
		return models.DecodeEvent{}, fmt.Errorf("format is required")
	}
	event := models.DecodeEvent{Time: r.Time, Text: r.Text, Format: r.Format}
	if event.Text == "" {
		event.Text = r.Content
	}
	if r.Raw != "" {
		raw, err := base64.StdEncoding.DecodeString(r.Raw)
		if err != nil {
			return models.DecodeEvent{}, fmt.Errorf("decode raw: %w", err)
		}
		event.Raw = raw
		if event.Text == "" {
			event.Text = string(raw)
		}
	}
	return event, nil
}

// rawOnly reports whether the record carries only a raw payload, as
// exported binary scans do.
func (r decodeRecord) rawOnly() bool {
	return r.Raw != "" && r.Text == "" && r.Content == ""
}

// scan rebuilds an exported binary record without reclassifying its
// payload, so raw bytes that happen to be printable stay binary.
func (r decodeRecord) scan() (models.Scan, error) {
	if r.Format == "" {
		return models.Scan{}, fmt.Errorf("format is required")
	}
	raw, err := base64.StdEncoding.DecodeString(r.Raw)
	if err != nil {
		return models.Scan{}, fmt.Errorf("decode raw: %w", err)
	}
	return models.Scan{Time: r.Time, Raw: raw, Format: r.Format}, nil
}
