package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"scanhist/internal/models"
)

type staticPrefs bool

func (p staticPrefs) IgnoreConsecutiveDuplicates() bool { return bool(p) }

// testStore creates a temporary store for testing.
func testStore(t *testing.T, prefs Preferences) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := Open(path, prefs)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func at(sec int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, sec, 0, time.Local)
}

func TestInsertTextScan(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	id, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "hello", Format: "QR_CODE"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected scan, got nil")
	}
	if got.Content != "hello" {
		t.Fatalf("expected content 'hello', got %q", got.Content)
	}
	if got.Raw != nil {
		t.Fatalf("expected nil raw, got %v", got.Raw)
	}
	if got.Format != "QR_CODE" {
		t.Fatalf("expected format QR_CODE, got %q", got.Format)
	}
	if !got.Time.Equal(at(0)) {
		t.Fatalf("expected time %v, got %v", at(0), got.Time)
	}
}

func TestInsertNonPrintableStoresRaw(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	text := "\u0001\u0002"
	id, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: text, Format: "AZTEC"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "" {
		t.Fatalf("expected empty content, got %q", got.Content)
	}
	if !bytes.Equal(got.Raw, []byte(text)) {
		t.Fatalf("expected raw %v, got %v", []byte(text), got.Raw)
	}
}

func TestInsertNonPrintablePrefersExplicitRaw(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	raw := []byte{0x00, 0xff, 0x10}
	id, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "\x00?\x10", Raw: raw, Format: "DATA_MATRIX"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := st.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got.Raw, raw) {
		t.Fatalf("expected explicit raw %v, got %v", raw, got.Raw)
	}
}

func TestInsertPrintableIgnoresRaw(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	id, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "plain", Raw: []byte("plain"), Format: "QR_CODE"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := st.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Raw != nil || got.Content != "plain" {
		t.Fatalf("expected text-only record, got %+v", got)
	}
}

func TestConsecutiveDuplicatesIgnored(t *testing.T) {
	st := testStore(t, staticPrefs(true))
	ctx := context.Background()

	for _, event := range []models.DecodeEvent{
		{Time: at(0), Text: "hello", Format: "QR_CODE"},
		{Time: at(0), Text: "\u0001\u0002", Format: "QR_CODE"},
	} {
		first, err := st.InsertScan(ctx, event)
		if err != nil {
			t.Fatalf("first insert: %v", err)
		}
		event.Time = at(5)
		second, err := st.InsertScan(ctx, event)
		if err != nil {
			t.Fatalf("second insert: %v", err)
		}
		if first != second {
			t.Fatalf("expected same id, got %d and %d", first, second)
		}
	}

	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestConsecutiveDuplicateOnlyChecksLastRow(t *testing.T) {
	st := testStore(t, staticPrefs(true))
	ctx := context.Background()

	a, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "a", Format: "QR_CODE"})
	b, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "b", Format: "QR_CODE"})
	again, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(2), Text: "a", Format: "QR_CODE"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if again == a || again == b {
		t.Fatalf("expected a new row, got id %d", again)
	}

	// Same content, different format.
	other, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(3), Text: "a", Format: "EAN_13"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if other == again {
		t.Fatal("format change must not be treated as a duplicate")
	}
}

func TestEmptyTextAfterBinaryScanIsNotDuplicate(t *testing.T) {
	st := testStore(t, staticPrefs(true))
	ctx := context.Background()

	// Both rows have an empty content column; only the binary one has raw.
	bin, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "\x01", Format: "QR_CODE"})
	if err != nil {
		t.Fatalf("insert binary: %v", err)
	}
	empty, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "", Format: "QR_CODE"})
	if err != nil {
		t.Fatalf("insert text: %v", err)
	}
	if empty == bin {
		t.Fatal("text scan matched a binary scan")
	}

	scan, err := st.GetScan(ctx, empty)
	if err != nil || scan == nil {
		t.Fatalf("get: %v", err)
	}
	if scan.Raw != nil || scan.Content != "" {
		t.Fatalf("expected empty text row, got %+v", scan)
	}
}

func TestRecordScanReportsInsert(t *testing.T) {
	st := testStore(t, staticPrefs(true))
	ctx := context.Background()

	event := models.DecodeEvent{Time: at(0), Text: "same", Format: "QR_CODE"}
	first, inserted, err := st.RecordScan(ctx, event)
	if err != nil || !inserted {
		t.Fatalf("first record: inserted=%v err=%v", inserted, err)
	}
	second, inserted, err := st.RecordScan(ctx, event)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if inserted || second != first {
		t.Fatalf("expected duplicate of %d, got id %d inserted=%v", first, second, inserted)
	}
}

func TestRestoreScanKeepsPrintableRaw(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	id, inserted, err := st.RestoreScan(ctx, models.Scan{Time: at(0), Content: "ignored", Raw: []byte("AB"), Format: "AZTEC"})
	if err != nil || !inserted {
		t.Fatalf("restore: inserted=%v err=%v", inserted, err)
	}
	scan, err := st.GetScan(ctx, id)
	if err != nil || scan == nil {
		t.Fatalf("get: %v", err)
	}
	if scan.Content != "" || !bytes.Equal(scan.Raw, []byte("AB")) {
		t.Fatalf("expected binary row with raw AB, got %+v", scan)
	}

	id, _, err = st.RestoreScan(ctx, models.Scan{Time: at(1), Content: "plain", Format: "EAN_8"})
	if err != nil {
		t.Fatalf("restore text: %v", err)
	}
	scan, _ = st.GetScan(ctx, id)
	if scan == nil || scan.Content != "plain" || scan.Raw != nil {
		t.Fatalf("expected text row, got %+v", scan)
	}
}

func TestLookupWhileCursorOpen(t *testing.T) {
	st := testStore(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(i), Text: "row", Format: "QR_CODE"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	cur, err := st.Scans(ctx)
	if err != nil {
		t.Fatalf("scans: %v", err)
	}
	defer cur.Close()

	seen := 0
	for cur.Next() {
		scan, err := st.GetScan(ctx, cur.Summary().ID)
		if err != nil {
			t.Fatalf("get while iterating: %v", err)
		}
		if scan == nil {
			t.Fatalf("scan %d missing", cur.Summary().ID)
		}
		seen++
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if seen != 3 {
		t.Fatalf("expected 3 rows, got %d", seen)
	}
}

func TestConsecutiveDuplicatesKeptWhenDisabled(t *testing.T) {
	st := testStore(t, staticPrefs(false))
	ctx := context.Background()

	event := models.DecodeEvent{Time: at(0), Text: "hello", Format: "QR_CODE"}
	first, err := st.InsertScan(ctx, event)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second, err := st.InsertScan(ctx, event)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %d twice", first)
	}

	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

type togglePrefs struct{ on bool }

func (p *togglePrefs) IgnoreConsecutiveDuplicates() bool { return p.on }

func TestPreferenceReadPerInsert(t *testing.T) {
	prefs := &togglePrefs{}
	st := testStore(t, prefs)
	ctx := context.Background()

	event := models.DecodeEvent{Time: at(0), Text: "x", Format: "QR_CODE"}
	first, _ := st.InsertScan(ctx, event)
	prefs.on = true
	second, err := st.InsertScan(ctx, event)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first != second {
		t.Fatalf("expected dedup after enabling preference, got %d and %d", first, second)
	}
}

func TestScansOrderedNewestFirst(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	mid, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(10), Text: "mid", Format: "QR_CODE"})
	old, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "old", Format: "QR_CODE"})
	newest, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(30), Text: "new", Format: "QR_CODE"})

	cur, err := st.Scans(ctx)
	if err != nil {
		t.Fatalf("scans: %v", err)
	}
	var ids []int64
	for cur.Next() {
		s := cur.Summary()
		ids = append(ids, s.ID)
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if err := cur.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []int64{newest, mid, old}
	if len(ids) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestGetScanMissing(t *testing.T) {
	st := testStore(t, nil)
	got, err := st.GetScan(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestHasBinaryData(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	has, err := st.HasBinaryData(ctx)
	if err != nil {
		t.Fatalf("has binary: %v", err)
	}
	if has {
		t.Fatal("empty store should not report binary data")
	}

	if _, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "text", Format: "QR_CODE"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if has, _ = st.HasBinaryData(ctx); has {
		t.Fatal("text-only store should not report binary data")
	}

	if _, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "\x02", Format: "QR_CODE"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	has, err = st.HasBinaryData(ctx)
	if err != nil {
		t.Fatalf("has binary: %v", err)
	}
	if !has {
		t.Fatal("expected binary data")
	}
}

func TestRemoveScan(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	keep, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "keep", Format: "QR_CODE"})
	drop, _ := st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "drop", Format: "QR_CODE"})

	if err := st.RemoveScan(ctx, drop); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.RemoveScan(ctx, drop); err != nil {
		t.Fatalf("removing a missing id should succeed: %v", err)
	}

	scans, err := st.ListScans(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scans) != 1 || scans[0].ID != keep {
		t.Fatalf("expected only id %d, got %+v", keep, scans)
	}
}

func TestRemoveScans(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	if err := st.RemoveScans(ctx); err != nil {
		t.Fatalf("clearing an empty store should succeed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := st.InsertScan(ctx, models.DecodeEvent{Time: at(i), Text: "x", Format: "QR_CODE"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := st.RemoveScans(ctx); err != nil {
		t.Fatalf("remove all: %v", err)
	}

	cur, err := st.Scans(ctx)
	if err != nil {
		t.Fatalf("scans: %v", err)
	}
	defer cur.Close()
	if cur.Next() {
		t.Fatalf("expected empty history, got %+v", cur.Summary())
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
}

func TestAllScansIncludesRaw(t *testing.T) {
	st := testStore(t, nil)
	ctx := context.Background()

	st.InsertScan(ctx, models.DecodeEvent{Time: at(0), Text: "text", Format: "QR_CODE"})
	st.InsertScan(ctx, models.DecodeEvent{Time: at(1), Text: "\x03\x04", Format: "PDF_417"})

	all, err := st.AllScans(ctx)
	if err != nil {
		t.Fatalf("all scans: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(all))
	}
	if !bytes.Equal(all[0].Raw, []byte{0x03, 0x04}) {
		t.Fatalf("expected newest scan to carry raw payload, got %+v", all[0])
	}
	if all[1].Raw != nil {
		t.Fatalf("expected text scan without raw, got %v", all[1].Raw)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
