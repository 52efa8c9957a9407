package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	NewComponentLogger(logger, "scanner").Info("scanned page", Int("page", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO scanner: scanned page") {
		t.Errorf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "page=2") {
		t.Errorf("missing attr in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Warn("fetch failed", String(FieldPath, "review list"), Error(errors.New("boom boom")))

	line := buf.String()
	if !strings.Contains(line, `path="review list"`) {
		t.Errorf("value with spaces not quoted: %q", line)
	}
	if !strings.Contains(line, `error="boom boom"`) {
		t.Errorf("error attr not rendered: %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should have been suppressed at warn level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Error("warn record missing")
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hello", String(FieldBookID, "12345-dune"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if record["msg"] != "hello" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v", record["level"])
	}
	if record["book_id"] != "12345-dune" {
		t.Errorf("book_id = %v", record["book_id"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("ts field missing")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(Options{Format: "yaml", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("dropped")
	if logger.Enabled(context.Background(), 0) {
		t.Error("nop logger should report disabled")
	}
}
