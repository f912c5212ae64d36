// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		// Add a source location for debug and error levels
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// Parses the AURAL_LOG_LEVEL environment variable to set the log level.
// Valid values: DEBUG, INFO, WARN, WARNING, ERROR
// Default: INFO
func DefaultConfig() Config {
	return Config{
		Level:  ParseLevel(os.Getenv("AURAL_LOG_LEVEL")),
		Format: "text",
	}
}

// ParseLevel maps a level name to its slog level. Unknown or empty
// names mean INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
