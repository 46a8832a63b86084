package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-dynform/pkg/logging"
)

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Output: &buf, Service: "dynform"})
	logger.Info("catalog loaded", "fields", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["service"] != "dynform" {
		t.Fatalf("expected service attribute, got %v", record["service"])
	}
	if record["msg"] != "catalog loaded" {
		t.Fatalf("unexpected message %v", record["msg"])
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Output: &buf, Format: "text", Level: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := logging.ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestOrDiscard(t *testing.T) {
	if logging.OrDiscard(nil) == nil {
		t.Fatal("expected discard logger")
	}
	logger := slog.Default()
	if logging.OrDiscard(logger) != logger {
		t.Fatal("expected supplied logger to be returned")
	}
}
