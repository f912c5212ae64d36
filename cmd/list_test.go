package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "truncated…", truncate("truncated title", 10))

	// Multi-byte titles cut at the rune boundary, never mid-sequence.
	assert.Equal(t, "Sigur Rós…", truncate("Sigur Rós — Ágætis byrjun", 10))
	assert.Equal(t, "日本語のタイトルが長…", truncate("日本語のタイトルが長すぎる", 11))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:05", formatDuration(5*time.Second))
	assert.Equal(t, "3:42", formatDuration(3*time.Minute+42*time.Second))
	assert.Equal(t, "61:00", formatDuration(61*time.Minute))
}
