package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID     int64  `json:"id" yaml:"id"`
	Format string `json:"format" yaml:"format"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, sample{ID: 1, Format: "QR_CODE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"id\":1,\"format\":\"QR_CODE\"}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (YAMLFormatter{}).Write(&buf, []sample{{ID: 1, Format: "EAN_13"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "- id: 1") || !strings.Contains(out, "format: EAN_13") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "yaml", "yml"} {
		if _, err := ByName(name); err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
