// Package domain contains the core models and logic of the Aural music
// player with no external dependencies.
package domain

import (
	"time"
)

// Track is a single playable audio item together with its library
// metadata. Tracks are produced by an external ingester (or a folder
// scan) and owned by the track repository; playback increments
// PlayCount, the user edits Rating and Tags.
type Track struct {
	// ID is a stable unique identifier (UUID).
	ID string

	// Title is the track title.
	Title string

	// Artist is the performing artist.
	Artist string

	// Album is the album name, empty if unknown.
	Album string

	// Genre is the music genre, empty if unknown.
	Genre string

	// Year is the release year, 0 if unknown.
	Year int

	// Duration is the track length. It starts as the ingester's
	// estimate and becomes authoritative once the engine has decoded
	// the stream.
	Duration time.Duration

	// SourceURL locates the playable resource (file path or URL).
	SourceURL string

	// Thumbnail locates the artwork image, empty if none.
	Thumbnail string

	// Uploader is the original uploader name, empty if unknown.
	Uploader string

	// Description is free-form text from the ingester.
	Description string

	// Tags is a set of user-assigned labels.
	Tags []string

	// Rating is a user rating from 0 (unrated) to 5.
	Rating int

	// PlayCount counts how many times the track was loaded for
	// playback. Monotonic, incremented exactly once per load.
	PlayCount int

	// DateAdded is when the track entered the library.
	DateAdded time.Time
}

// HasTag reports whether the track carries the given tag.
func (t Track) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Playlist is an ordered collection of track references. Duplicate
// track ids and duplicate playlist names are both permitted. Dangling
// references (a deleted track still listed) are tolerated and filtered
// out when the playlist is resolved against the repository.
type Playlist struct {
	// ID is a stable unique identifier (UUID).
	ID string

	// Name is the playlist name. Uniqueness is not enforced.
	Name string

	// Description is optional free-form text.
	Description string

	// TrackIDs is the ordered sequence of track ids. Order defines
	// the play order when the playlist is used as a queue source.
	TrackIDs []string

	// CreatedAt is when the playlist was created.
	CreatedAt time.Time

	// UpdatedAt is when the playlist was last modified.
	UpdatedAt time.Time

	// IsDefault marks the system-maintained "All Tracks" playlist.
	IsDefault bool
}

// PlaylistStats are derived figures for a playlist, computed against
// the track repository with dangling ids ignored.
type PlaylistStats struct {
	TrackCount    int
	TotalDuration time.Duration
	AverageRating float64
}

// PlaybackStatus is the lifecycle state of the current track.
//
// The machine per track is
// Stopped -> Loading -> Ready <-> Playing <-> Paused -> Ended|Failed.
// Ended never persists: it immediately resolves into the next track or
// Stopped. Failed is terminal for that track only; loading another
// track leaves it behind.
type PlaybackStatus int

const (
	// StatusStopped is the initial state and the result of Stop.
	StatusStopped PlaybackStatus = iota

	// StatusLoading means a load was requested and its outcome is
	// still pending.
	StatusLoading

	// StatusReady means the stream decoded but playback was not
	// requested.
	StatusReady

	// StatusPlaying means audio is rendering.
	StatusPlaying

	// StatusPaused means playback is suspended at a position.
	StatusPaused

	// StatusEnded means the stream reached its natural end.
	StatusEnded

	// StatusFailed means the current load or start failed.
	StatusFailed
)

// String returns a human-readable representation of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens when the queue runs out.
type RepeatMode string

const (
	// RepeatNone stops at the end of the queue.
	RepeatNone RepeatMode = "none"

	// RepeatOne restarts the current track when it ends.
	RepeatOne RepeatMode = "one"

	// RepeatAll wraps from the last queue index back to the first.
	RepeatAll RepeatMode = "all"
)

// Valid reports whether the mode is one of the known values.
func (m RepeatMode) Valid() bool {
	switch m {
	case RepeatNone, RepeatOne, RepeatAll:
		return true
	}
	return false
}

// Generation marks one engine load. Every load gets the next value;
// engine events carry the generation they belong to so that events
// from a superseded load can be discarded.
type Generation uint64

// Volume and playback-rate bounds. Setters clamp silently instead of
// rejecting out-of-range input.
const (
	MinVolume = 0.0
	MaxVolume = 1.0

	MinRate = 0.25
	MaxRate = 4.0
)

// ClampVolume clamps v to [MinVolume, MaxVolume].
func ClampVolume(v float64) float64 {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}

// ClampRate clamps r to [MinRate, MaxRate].
func ClampRate(r float64) float64 {
	if r < MinRate {
		return MinRate
	}
	if r > MaxRate {
		return MaxRate
	}
	return r
}

// PlayerSnapshot is a point-in-time copy of the player state. It is
// published with every state event and returned by Snapshot; consumers
// never see the live mutable state.
type PlayerSnapshot struct {
	// CurrentTrack is the loaded track (nil if none).
	CurrentTrack *Track

	// Queue is the working play order.
	Queue []Track

	// CurrentIndex is the position in Queue, -1 if no track.
	CurrentIndex int

	// Status is the playback lifecycle state.
	Status PlaybackStatus

	// Position is the playback position within the track.
	Position time.Duration

	// Duration is the track length, authoritative once metadata
	// arrived from the engine.
	Duration time.Duration

	// Volume is in [0, 1].
	Volume float64

	// Rate is the playback rate in [0.25, 4].
	Rate float64

	// Repeat is the queue repeat mode.
	Repeat RepeatMode

	// Shuffle picks random queue indices instead of sequential ones.
	Shuffle bool

	// Err is the last playback error, nil while healthy. Cleared on
	// the next successful load.
	Err error
}

// Playing reports whether audio is actively rendering.
func (s PlayerSnapshot) Playing() bool {
	return s.Status == StatusPlaying
}

// Paused reports whether playback is suspended. Stopped is not paused.
func (s PlayerSnapshot) Paused() bool {
	return s.Status == StatusPaused
}

// Settings is the persisted subset of player state plus user
// preferences, restored on startup. Transient playback position and
// the current track are deliberately not part of it: a restart does
// not resume mid-track.
type Settings struct {
	// SchemaVersion identifies the record layout for migration.
	SchemaVersion int

	// Volume in [0, 1].
	Volume float64

	// Rate in [0.25, 4].
	Rate float64

	// Repeat is the saved repeat mode.
	Repeat RepeatMode

	// Shuffle is the saved shuffle flag.
	Shuffle bool

	// Filter is the saved library filter preference.
	Filter FilterSpec
}

// SettingsSchemaVersion is the current Settings layout version.
const SettingsSchemaVersion = 1

// DefaultSettings returns the settings applied when nothing was
// persisted yet or a loaded record predates a field.
func DefaultSettings() Settings {
	return Settings{
		SchemaVersion: SettingsSchemaVersion,
		Volume:        0.8,
		Rate:          1.0,
		Repeat:        RepeatNone,
		Shuffle:       false,
		Filter:        FilterSpec{SortKey: SortByTitle, SortOrder: SortAscending},
	}
}
