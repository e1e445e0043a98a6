// Package logging builds the zerolog logger shared by every component:
// console plus a per-session log file, with an optional GELF (Graylog)
// output when configured.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel converts a string log level to a zerolog.Level, defaulting to
// info for anything unrecognized.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configures Setup.
type Options struct {
	Level          string
	LogsDir        string
	AppName        string
	GraylogEnabled bool
	GraylogAddress string
	// ConsoleWriter overrides the default stdout console output, used by
	// tests to capture log lines.
	ConsoleWriter io.Writer
}

// Manager owns the logger outputs and closes them on shutdown.
type Manager struct {
	logger  zerolog.Logger
	logFile *os.File
}

// Setup creates the session logger. The log file is created under
// opts.LogsDir (created if missing); file creation failure degrades to
// console-only logging rather than failing startup.
func Setup(opts Options) *Manager {
	m := &Manager{}

	console := opts.ConsoleWriter
	if console == nil {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	writers := []io.Writer{console}

	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0755); err == nil {
			path := LogFilePath(opts.LogsDir, opts.AppName, time.Now())
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				m.logFile = f
				writers = append(writers, f)
			}
		}
	}

	if opts.GraylogEnabled && opts.GraylogAddress != "" {
		if gw, err := gelf.NewWriter(opts.GraylogAddress); err == nil {
			writers = append(writers, gw)
		}
	}

	m.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()

	return m
}

// Logger returns the configured logger.
func (m *Manager) Logger() zerolog.Logger {
	return m.logger
}

// Close releases the log file, if any.
func (m *Manager) Close() error {
	if m.logFile != nil {
		return m.logFile.Close()
	}
	return nil
}
