package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"  DEBUG  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "scout.log")

	logger, cleanup, err := Setup(Config{
		Level:         "info",
		FilePath:      logPath,
		WriteToStderr: false,
	})
	require.NoError(t, err)

	logger.Info("hello", slog.String("component", "test"))
	cleanup()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestSetup_DebugLevelFilters(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "scout.log")

	logger, cleanup, err := Setup(Config{
		Level:         "warn",
		FilePath:      logPath,
		WriteToStderr: false,
	})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	cleanup()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
