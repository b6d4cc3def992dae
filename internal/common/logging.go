// Package common provides shared utilities for stockbot
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

const consoleTimeFormat = "15:04:05"

// NewLogger creates a console logger with the specified level
func NewLogger(level string) *Logger {
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeConsole,
		TimeFormat: consoleTimeFormat,
		OutputType: arbormodels.OutputFormatLogfmt,
	})
	return &Logger{ILogger: logger.WithLevelFromString(normalizeLevel(level))}
}

// NewLoggerFromConfig builds a logger from the logging section of the config.
// Outputs may include "console" and "file"; an empty list means console only.
// Level "disabled" returns a silent logger.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	if strings.EqualFold(cfg.Level, "disabled") || strings.EqualFold(cfg.Level, "off") {
		return NewSilentLogger()
	}

	logger := arbor.NewLogger()

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	for _, output := range outputs {
		switch strings.ToLower(output) {
		case "console", "stdout":
			logger = logger.WithConsoleWriter(arbormodels.WriterConfiguration{
				Type:       arbormodels.LogWriterTypeConsole,
				TimeFormat: consoleTimeFormat,
				OutputType: arbormodels.OutputFormatLogfmt,
			})
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(arbormodels.WriterConfiguration{
				Type:       arbormodels.LogWriterTypeFile,
				FileName:   cfg.FilePath,
				TimeFormat: consoleTimeFormat,
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				OutputType: arbormodels.OutputFormatLogfmt,
			})
		}
	}

	return &Logger{ILogger: logger.WithLevelFromString(normalizeLevel(cfg.Level))}
}

// NewSilentLogger creates a logger with no writers attached
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger()}
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return strings.ToLower(strings.TrimSpace(level))
	case "warning":
		return "warn"
	default:
		return "info"
	}
}
