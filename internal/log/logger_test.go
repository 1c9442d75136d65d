package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"  Debug ", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentStampedOnRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	catalog := logger.WithComponent(ComponentCatalog)
	catalog.Info("Card search completed", "results", 3)

	out := buf.String()
	if !strings.Contains(out, FieldComponent+"="+ComponentCatalog) {
		t.Errorf("record missing component attribute: %q", out)
	}
	if catalog.Component() != ComponentCatalog {
		t.Errorf("Component() = %q, want %q", catalog.Component(), ComponentCatalog)
	}
	if logger.Component() != ComponentApp {
		t.Errorf("parent Component() = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestDefaultComponentWhenUnset(t *testing.T) {
	logger := New(Config{})
	if logger.Component() != ComponentApp {
		t.Errorf("Component() = %q, want %q", logger.Component(), ComponentApp)
	}
}
