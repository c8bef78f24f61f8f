package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_DETAILED", "true")

	cfg := LoadConfigFromEnv()
	if cfg.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %s", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Expected format text, got %s", cfg.Format)
	}
	if !cfg.DetailedLogging {
		t.Error("Expected detailed logging to be enabled")
	}
}

func TestInitWithConfigTogglesDebug(t *testing.T) {
	if err := InitWithConfig(LogConfig{Level: "INFO", Format: "text", DetailedLogging: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !IsDebugEnabled() {
		t.Error("Expected debug to be enabled")
	}

	// Must not panic without an active span
	Debug(context.Background(), "debug line", "k", 1)
	Risk(context.Background(), "SPY", "PRICE_UNAVAILABLE")

	if err := InitWithConfig(LogConfig{Level: "INFO", Format: "json"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if IsDebugEnabled() {
		t.Error("Expected debug to be disabled")
	}
}
