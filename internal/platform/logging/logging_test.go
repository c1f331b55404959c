package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(&buf, "warn", false)
	logger.Info("dropped")
	logger.Warn("kept", "owner_id", "u-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record above warn, got %d: %q", len(lines), buf.String())
	}
	record := map[string]any{}
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "kept" || record["owner_id"] != "u-1" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestDevelopmentLoggerIsVerbose(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	New(&buf, "error", true).Debug("tick")
	if !strings.Contains(buf.String(), "msg=tick") {
		t.Fatalf("expected debug text record, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unexpected level mapping")
	}
}
