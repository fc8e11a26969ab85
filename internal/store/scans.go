package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"scanhist/internal/models"
	"scanhist/internal/textutil"
)

// TimeLayout is how scan timestamps are stored in the _datetime column.
const TimeLayout = "2006-01-02 15:04:05"

type statements struct {
	insert    *sql.Stmt
	last      *sql.Stmt
	list      *sql.Stmt
	listFull  *sql.Stmt
	get       *sql.Stmt
	hasBinary *sql.Stmt
	remove    *sql.Stmt
	removeAll *sql.Stmt
	count     *sql.Stmt
}

func (s *statements) prepare(db *sql.DB) error {
	var err error
	if s.insert, err = db.Prepare(`INSERT INTO scans (_datetime, content, raw, format) VALUES (?, ?, ?, ?)`); err != nil {
		return err
	}
	if s.last, err = db.Prepare(`SELECT _id, content, raw, format FROM scans ORDER BY _id DESC LIMIT 1`); err != nil {
		return err
	}
	if s.list, err = db.Prepare(`SELECT _id, _datetime, content, format FROM scans ORDER BY _datetime DESC, _id DESC`); err != nil {
		return err
	}
	if s.listFull, err = db.Prepare(`SELECT _id, _datetime, content, raw, format FROM scans ORDER BY _datetime DESC, _id DESC`); err != nil {
		return err
	}
	if s.get, err = db.Prepare(`SELECT _id, _datetime, content, raw, format FROM scans WHERE _id = ?`); err != nil {
		return err
	}
	if s.hasBinary, err = db.Prepare(`SELECT 1 FROM scans WHERE raw IS NOT NULL LIMIT 1`); err != nil {
		return err
	}
	if s.remove, err = db.Prepare(`DELETE FROM scans WHERE _id = ?`); err != nil {
		return err
	}
	if s.removeAll, err = db.Prepare(`DELETE FROM scans`); err != nil {
		return err
	}
	if s.count, err = db.Prepare(`SELECT COUNT(*) FROM scans`); err != nil {
		return err
	}
	return nil
}

func (s *statements) close() {
	for _, stmt := range []*sql.Stmt{
		s.insert, s.last, s.list, s.listFull, s.get,
		s.hasBinary, s.remove, s.removeAll, s.count,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// InsertScan stores a decode event and returns the row id. Text with
// non-printable characters is stored as a raw payload with empty content.
// When consecutive duplicates are ignored and the event equals the most
// recent row, that row's id is returned and nothing is written.
func (s *Store) InsertScan(ctx context.Context, event models.DecodeEvent) (int64, error) {
	id, _, err := s.RecordScan(ctx, event)
	return id, err
}

// RecordScan is InsertScan that also reports whether a row was written.
func (s *Store) RecordScan(ctx context.Context, event models.DecodeEvent) (int64, bool, error) {
	content := event.Text
	var raw []byte
	if textutil.HasNonPrintable(content) {
		raw = event.Raw
		if raw == nil {
			raw = []byte(content)
		}
		content = ""
	}
	return s.put(ctx, event.Time, content, raw, event.Format)
}

// RestoreScan writes a full record without classifying its text, so a
// raw payload stays binary even when its bytes are printable. A record
// with a raw payload is stored with empty content. The ID field is
// ignored and the duplicate policy applies as for InsertScan.
func (s *Store) RestoreScan(ctx context.Context, scan models.Scan) (int64, bool, error) {
	content := scan.Content
	if scan.Raw != nil {
		content = ""
	}
	return s.put(ctx, scan.Time, content, scan.Raw, scan.Format)
}

func (s *Store) put(ctx context.Context, when time.Time, content string, raw []byte, format string) (int64, bool, error) {
	if s.prefs != nil && s.prefs.IgnoreConsecutiveDuplicates() {
		id, err := s.lastMatching(ctx, content, raw, format)
		if err != nil {
			return 0, false, fmt.Errorf("check last scan: %w", err)
		}
		if id > 0 {
			slog.Debug("skipping consecutive duplicate scan", "id", id, "format", format)
			return id, false, nil
		}
	}

	var rawArg any
	if raw != nil {
		rawArg = raw
	}
	res, err := s.stmts.insert.ExecContext(ctx, formatTime(when), content, rawArg, format)
	if err != nil {
		return 0, false, fmt.Errorf("insert scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("insert scan: %w", err)
	}
	return id, true, nil
}

// lastMatching returns the id of the most recent row if it carries the
// same content, raw payload and format, or 0 otherwise. Only the single
// newest row is considered.
func (s *Store) lastMatching(ctx context.Context, content string, raw []byte, format string) (int64, error) {
	var (
		id         int64
		lastText   string
		lastRaw    []byte
		lastFormat string
	)
	err := s.stmts.last.QueryRowContext(ctx).Scan(&id, &lastText, &lastRaw, &lastFormat)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if lastText != content || lastFormat != format {
		return 0, nil
	}
	if (raw == nil) != (lastRaw == nil) || !bytes.Equal(raw, lastRaw) {
		return 0, nil
	}
	return id, nil
}

// ScanCursor iterates history rows lazily. It is forward-only; query
// again to start over. An open cursor holds one of the store's two
// connections, so other calls still run but a second open cursor
// waits for the first to close.
type ScanCursor struct {
	rows *sql.Rows
	cur  models.ScanSummary
	err  error
}

// Next advances to the next row.
func (c *ScanCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var datetime string
	if err := c.rows.Scan(&c.cur.ID, &datetime, &c.cur.Content, &c.cur.Format); err != nil {
		c.err = err
		return false
	}
	t, err := parseTime(datetime)
	if err != nil {
		c.err = fmt.Errorf("scan %d: %w", c.cur.ID, err)
		return false
	}
	c.cur.Time = t
	return true
}

// Summary returns the current row.
func (c *ScanCursor) Summary() models.ScanSummary {
	return c.cur
}

// Err returns the first error met while iterating.
func (c *ScanCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

// Close releases the cursor.
func (c *ScanCursor) Close() error {
	return c.rows.Close()
}

// Scans returns a cursor over all scans, newest first.
func (s *Store) Scans(ctx context.Context) (*ScanCursor, error) {
	rows, err := s.stmts.list.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	return &ScanCursor{rows: rows}, nil
}

// ListScans drains Scans into a slice.
func (s *Store) ListScans(ctx context.Context) ([]models.ScanSummary, error) {
	cur, err := s.Scans(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	out := []models.ScanSummary{}
	for cur.Next() {
		out = append(out, cur.Summary())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read scans: %w", err)
	}
	return out, nil
}

// AllScans returns every full record, newest first.
func (s *Store) AllScans(ctx context.Context) ([]models.Scan, error) {
	rows, err := s.stmts.listFull.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	out := []models.Scan{}
	for rows.Next() {
		scan, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *scan)
	}
	return out, rows.Err()
}

// GetScan returns one full record, or nil if the id is unknown.
func (s *Store) GetScan(ctx context.Context, id int64) (*models.Scan, error) {
	scan, err := scanRecord(s.stmts.get.QueryRowContext(ctx, id))
	if err != nil {
		return nil, fmt.Errorf("get scan %d: %w", id, err)
	}
	return scan, nil
}

// HasBinaryData reports whether any stored scan has a raw payload.
func (s *Store) HasBinaryData(ctx context.Context) (bool, error) {
	var one int
	err := s.stmts.hasBinary.QueryRowContext(ctx).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check binary data: %w", err)
	}
	return true, nil
}

// RemoveScan deletes one scan. Unknown ids are not an error.
func (s *Store) RemoveScan(ctx context.Context, id int64) error {
	if _, err := s.stmts.remove.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("remove scan %d: %w", id, err)
	}
	return nil
}

// RemoveScans clears the history.
func (s *Store) RemoveScans(ctx context.Context) error {
	if _, err := s.stmts.removeAll.ExecContext(ctx); err != nil {
		return fmt.Errorf("remove scans: %w", err)
	}
	return nil
}

// Count returns the number of stored scans.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.stmts.count.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return n, nil
}

func scanRecord(scanner interface {
	Scan(dest ...any) error
}) (*models.Scan, error) {
	var scan models.Scan
	var datetime string
	if err := scanner.Scan(&scan.ID, &datetime, &scan.Content, &scan.Raw, &scan.Format); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t, err := parseTime(datetime)
	if err != nil {
		return nil, err
	}
	scan.Time = t
	return &scan, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Local().Format(TimeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, value, time.Local)
}
