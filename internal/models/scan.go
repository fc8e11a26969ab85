package models

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Scan is a stored history record.
type Scan struct {
	ID      int64     `json:"id"`
	Time    time.Time `json:"time"`
	Content string    `json:"content"`
	Raw     []byte    `json:"raw,omitempty"`
	Format  string    `json:"format"`
}

// ScanSummary is the lightweight row used by history lists.
type ScanSummary struct {
	ID      int64     `json:"id"`
	Time    time.Time `json:"time"`
	Content string    `json:"content"`
	Format  string    `json:"format"`
}

// DecodeEvent is what a decoder reports after a successful scan.
// Raw is optional and only used when Text is not printable.
type DecodeEvent struct {
	Time   time.Time `json:"time"`
	Text   string    `json:"text"`
	Raw    []byte    `json:"raw,omitempty"`
	Format string    `json:"format"`
}

const rawDigestLength = 12

// IsBinary reports whether the record carries a raw payload.
func (s Scan) IsBinary() bool {
	return s.Raw != nil
}

// RawDigest returns a short BLAKE2b-256 fingerprint of the raw payload,
// or an empty string for text records.
func (s Scan) RawDigest() string {
	if s.Raw == nil {
		return ""
	}
	sum := blake2b.Sum256(s.Raw)
	return hex.EncodeToString(sum[:])[:rawDigestLength]
}

// Summary drops the raw payload.
func (s Scan) Summary() ScanSummary {
	return ScanSummary{ID: s.ID, Time: s.Time, Content: s.Content, Format: s.Format}
}
