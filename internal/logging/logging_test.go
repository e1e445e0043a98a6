package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := LogFilePath("logs", "markers", start)
	want := filepath.Join("logs", "markers.20260314_150926.log")
	if got != want {
		t.Errorf("LogFilePath = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	m := Setup(Options{Level: "debug", ConsoleWriter: &buf})
	defer m.Close()

	logger := m.Logger()
	logger.Info().Str("component", "test").Msg("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output to contain message, got %q", buf.String())
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	m := Setup(Options{Level: "warn", ConsoleWriter: &buf})
	defer m.Close()

	logger := m.Logger()
	logger.Info().Msg("filtered out")
	logger.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "filtered out") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn message should pass at warn level")
	}
}

func TestDispatcherLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	dl := NewDispatcherLogger(logger)

	dl.Info("test message", "key1", "value1", "key2", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", entry["message"])
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestToFields_OddArguments(t *testing.T) {
	fields := toFields([]any{"a", 1, "dangling"})
	if len(fields) != 1 {
		t.Errorf("expected 1 field, got %d", len(fields))
	}
	if fields["a"] != 1 {
		t.Errorf("expected a=1, got %v", fields["a"])
	}
}
