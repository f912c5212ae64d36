package ports

import (
	"github.com/auralplayer/aural/internal/domain"
)

// TrackRepository is durable storage for track records.
//
// Implementations must be safe for concurrent use.
type TrackRepository interface {
	// Get returns the track with the given id, or
	// domain.ErrTrackNotFound.
	Get(id string) (*domain.Track, error)

	// Put inserts or replaces a track record.
	Put(track *domain.Track) error

	// Delete removes a track by id. Deleting an unknown id is a
	// no-op.
	Delete(id string) error

	// GetAll returns every stored track. The order is unspecified.
	GetAll() ([]*domain.Track, error)
}

// PlaylistRepository is durable storage for playlist records.
//
// Implementations must be safe for concurrent use.
type PlaylistRepository interface {
	// Save inserts or replaces a playlist record.
	Save(playlist *domain.Playlist) error

	// Load returns the playlist with the given id, or
	// domain.ErrPlaylistNotFound.
	Load(id string) (*domain.Playlist, error)

	// LoadAll returns every stored playlist.
	LoadAll() ([]*domain.Playlist, error)

	// Delete removes a playlist by id. Unknown ids are a no-op.
	Delete(id string) error

	// Exists reports whether a playlist with the id exists.
	Exists(id string) bool
}

// SettingsRepository persists the versioned settings record. Loading
// from an empty store returns defaults, not an error; records written
// by an older schema are migrated with defaults for absent fields.
//
// Implementations must be safe for concurrent use.
type SettingsRepository interface {
	// Load returns the persisted settings, migrated and defaulted.
	Load() (*domain.Settings, error)

	// Save persists the settings record.
	Save(settings *domain.Settings) error
}
