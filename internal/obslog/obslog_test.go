package obslog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Console: true, Stdout: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("move_selected", zap.String("move", "e2e4"))
	_ = logger.Sync()

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("output is not json: %v: %q", err, buf.String())
	}
	if line["msg"] != "move_selected" || line["move"] != "e2e4" || line["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", line)
	}
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "legacy", Console: true, Stdout: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("move_selector_fallback")
	_ = logger.Sync()
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "WARN | ") {
		t.Fatalf("unexpected legacy output: %q", out)
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coach.log")
	logger, err := New(Options{Format: "json", ToFile: true, File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hint_generated")
	_ = logger.Sync()
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "/tmp/x.log")
	opts := OptionsFromEnv()
	if opts.Level != "debug" || opts.Format != "json" || !opts.ToFile || opts.File != "/tmp/x.log" || !opts.Console {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
