package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests. Output is warn-level so
// passing runs stay quiet; set AURAL_TEST_DEBUG to see everything.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("AURAL_TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
