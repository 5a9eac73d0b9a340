// Package logging configures structured logging for scout.
// All components log through log/slog; this package sets up the
// default handler (JSON, optionally mirrored to a file).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means stderr only.
	FilePath string
	// WriteToStderr controls whether logs also go to stderr (default: true).
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults: info level, stderr only.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		WriteToStderr: true,
	}
}

// Setup initializes logging and installs the logger as the slog default.
// Returns the configured logger and a cleanup function that closes the
// log file if one was opened.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	var writers []io.Writer
	cleanup := func() {}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	if cfg.WriteToStderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = io.MultiWriter(writers...)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, cleanup, nil
}

// ParseLevel converts a level string to slog.Level.
// Unknown values default to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
