package logging

import (
	"testing"

	"github.com/confessly/confessly/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "INFO", "json"},
		{"text debug", "DEBUG", "text"},
		{"bad level falls back", "NOTALEVEL", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.LoggingConfig{Level: tt.level, Format: tt.format}
			if err := InitLogger(cfg); err != nil {
				t.Fatalf("InitLogger(%q, %q) failed: %v", tt.level, tt.format, err)
			}
			if Logger == nil {
				t.Fatal("Logger not set after InitLogger")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	Logger = nil
	if got := GetLogger(); got == nil {
		t.Fatal("GetLogger returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := WithComponent("moderation")
	if logger == nil {
		t.Fatal("WithComponent returned nil")
	}
}
