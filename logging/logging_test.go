package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinema-booking-cli/config"
)

func TestNew_WritesToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	cfg := config.Default()
	cfg.LogFile = path
	cfg.LogLevel = "debug"

	logger, closer, err := New(cfg)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	logger.Debug("catalog refreshed", "movies", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "catalog refreshed") || !strings.Contains(string(data), "movies=3") {
		t.Fatalf("unexpected log content: %q", data)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"
	cfg.LogFile = filepath.Join(t.TempDir(), "client.log")

	if _, _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected log content: %q", buf.String())
	}
}
