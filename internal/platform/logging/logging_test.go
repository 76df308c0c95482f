package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONWithService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tanlov.log")
	logger, err := New(Options{Service: "tanlov", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("catalog loaded")
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["service"] != "tanlov" || entry["msg"] != "catalog loaded" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	logger, err := New(Options{Verbose: true, OutputPaths: []string{filepath.Join(t.TempDir(), "debug.log")}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if ce := logger.Check(zapcore.DebugLevel, "debug"); ce == nil {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected no-op logger")
	}
}
