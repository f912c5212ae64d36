package ports

import (
	"time"
)

// Artwork is one entry of the published artwork set. All entries
// reference the same source image at different nominal sizes; the
// consumer picks the best fit.
type Artwork struct {
	Size int    // nominal square size in pixels
	URL  string // locator of the source image
}

// NowPlaying is the metadata pushed to the OS media-control surface.
type NowPlaying struct {
	Title    string
	Artist   string
	Album    string // empty string when unknown
	Duration time.Duration
	Artwork  []Artwork
}

// TransportState is the coarse playback state shown on the surface.
type TransportState string

const (
	TransportPlaying TransportState = "playing"
	TransportPaused  TransportState = "paused"
	TransportStopped TransportState = "stopped"
)

// MediaCommands are the inbound handlers a session invokes when the
// user operates the OS controls. Handlers are registered once and must
// be re-entrant safe; nil handlers are skipped.
type MediaCommands struct {
	OnPlay     func()
	OnPause    func()
	OnStop     func()
	OnNext     func()
	OnPrevious func()

	// OnSeekBy receives a relative offset (negative for backward).
	OnSeekBy func(offset time.Duration)

	// OnSeekTo receives an absolute target position.
	OnSeekTo func(position time.Duration)
}

// MediaSession is an OS-level "now playing" surface (MPRIS on Linux).
// It is a capability-checked optional collaborator: when the platform
// offers no surface, no session is constructed and the player runs
// without one; that configuration is normal, not an error.
//
// The session is purely event-driven in both directions; it never
// polls the player.
type MediaSession interface {
	// SetCommands registers the inbound command handlers. Called
	// once, before any publication.
	SetCommands(commands MediaCommands)

	// PublishNowPlaying pushes track metadata to the surface.
	PublishNowPlaying(info NowPlaying) error

	// PublishTransport pushes the transport state and position.
	PublishTransport(state TransportState, position time.Duration) error

	// Close releases the surface.
	Close() error
}
