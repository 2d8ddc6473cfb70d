package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New("warn", "JSON", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines=%q, want only the warn record", lines)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "shown" || rec["key"] != "value" || rec["level"] != "WARN" {
		t.Fatalf("rec=%v", rec)
	}
}

func TestNew_TextDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New("", "", &buf)
	logger.Debug("hidden")
	logger.Info("hello")
	if got := buf.String(); !strings.Contains(got, "msg=hello") || strings.Contains(got, "hidden") {
		t.Fatalf("output=%q", got)
	}
}
