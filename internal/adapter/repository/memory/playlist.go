package memory

import (
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// PlaylistRepository stores playlists in a map guarded by a RWMutex.
type PlaylistRepository struct {
	mu        sync.RWMutex
	playlists map[string]domain.Playlist
}

// NewPlaylistRepository creates an empty playlist repository.
func NewPlaylistRepository() *PlaylistRepository {
	return &PlaylistRepository{playlists: make(map[string]domain.Playlist)}
}

// Save inserts or replaces a playlist record.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	if playlist == nil || playlist.ID == "" {
		return domain.NewValidationError("playlist", "", "playlist must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlists[playlist.ID] = copyPlaylist(*playlist)
	return nil
}

// Load returns the playlist with the given id.
func (r *PlaylistRepository) Load(id string) (*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlist, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	copied := copyPlaylist(playlist)
	return &copied, nil
}

// LoadAll returns every stored playlist in unspecified order.
func (r *PlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlists := make([]*domain.Playlist, 0, len(r.playlists))
	for _, playlist := range r.playlists {
		copied := copyPlaylist(playlist)
		playlists = append(playlists, &copied)
	}
	return playlists, nil
}

// Delete removes a playlist by id. Unknown ids are a no-op.
func (r *PlaylistRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playlists, id)
	return nil
}

// Exists reports whether a playlist with the id exists.
func (r *PlaylistRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.playlists[id]
	return ok
}

func copyPlaylist(playlist domain.Playlist) domain.Playlist {
	if playlist.TrackIDs != nil {
		ids := make([]string, len(playlist.TrackIDs))
		copy(ids, playlist.TrackIDs)
		playlist.TrackIDs = ids
	}
	return playlist
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)
