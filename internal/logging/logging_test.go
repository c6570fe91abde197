package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/marquee/marquee-go/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.log")

	logger, closer := New(config.LoggingConfig{Level: "info", Format: "json", File: path})
	logger.Info("hello", "component", "test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output in rotating file")
	}
}
