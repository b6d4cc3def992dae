package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{" WARN ", "warn"},
		{"warning", "warn"},
		{"", "info"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeLevel(tt.input), "normalizeLevel(%q)", tt.input)
	}
}

func TestNewLogger_Console(t *testing.T) {
	logger := NewLogger("warning")
	assert.NotNil(t, logger.ILogger)
	logger.Warn().Str("k", "v").Msg("console")
}

func TestNewLoggerFromConfig_Disabled(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{Level: "disabled"})
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.ILogger)
	logger.Info().Str("k", "v").Msg("discarded")
}

func TestNewLoggerFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stockbot.log")
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:    "debug",
		Outputs:  []string{"file"},
		FilePath: path,
	})
	assert.NotNil(t, logger.ILogger)
	assert.DirExists(t, filepath.Dir(path))
}
