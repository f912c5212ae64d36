// Package ports defines the interfaces that keep the core decoupled
// from audio, persistence and OS integrations.
package ports

import (
	"time"

	"github.com/auralplayer/aural/internal/domain"
)

// PlaybackEngine owns exactly one decoded audio stream at a time and
// keeps it synchronized with the requested transport state. Loading a
// new source implicitly stops and releases the previous one.
//
// Load is asynchronous: it returns the generation assigned to the
// request and reports the outcome later through engine events on the
// bus (metadata on success, failed on error). Events carry the
// generation they belong to; a consumer holding a newer generation
// discards them. A new Load supersedes a pending one; supersession is
// the only cancellation mechanism, there are no timeouts.
//
// Implementations must be safe for concurrent use.
type PlaybackEngine interface {
	// Load replaces the engine's source with the given locator (file
	// path or file:// URL) and returns the generation of this load.
	Load(locator string) domain.Generation

	// Play starts or resumes rendering. A rejected start is reported
	// both as the returned error and as a failed event.
	Play() error

	// Pause suspends rendering, keeping the position.
	Pause() error

	// Stop suspends rendering and rewinds to the start.
	Stop() error

	// Seek moves to the given position. Positions outside
	// [0, Duration] are clamped; with unknown duration Seek is a
	// no-op.
	Seek(position time.Duration) error

	// SetVolume applies a volume, clamped to [0, 1] first.
	SetVolume(volume float64)

	// SetRate applies a playback rate, clamped to [0.25, 4] first.
	SetRate(rate float64)

	// Position returns the current position, 0 without a stream.
	Position() time.Duration

	// Duration returns the stream duration once metadata decoded,
	// else 0.
	Duration() time.Duration

	// Close releases the output device and stops event publication.
	Close() error
}

// MetadataReader extracts track metadata from an audio file without
// loading it for playback. Used by the library folder scan.
type MetadataReader interface {
	// ReadMetadata returns a Track populated from the file's tags.
	// The returned track has no ID yet; the caller assigns one.
	ReadMetadata(path string) (*domain.Track, error)
}
