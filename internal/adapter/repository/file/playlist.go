package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

const playlistsFile = "playlists.json"

type playlistDocument struct {
	Playlists []playlistRecord `json:"playlists"`
}

type playlistRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TrackIDs    []string `json:"trackIds"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	IsDefault   bool     `json:"isDefault,omitempty"`
}

// PlaylistRepository persists playlists to playlists.json under the
// data directory.
type PlaylistRepository struct {
	path string

	mu        sync.RWMutex
	playlists map[string]domain.Playlist
}

// NewPlaylistRepository loads the playlist document from dir,
// tolerating a missing file.
func NewPlaylistRepository(dir string) (*PlaylistRepository, error) {
	r := &PlaylistRepository{
		path:      filepath.Join(dir, playlistsFile),
		playlists: make(map[string]domain.Playlist),
	}

	var doc playlistDocument
	if err := readJSON(r.path, &doc); err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	for _, record := range doc.Playlists {
		playlist := record.toDomain()
		r.playlists[playlist.ID] = playlist
	}
	return r, nil
}

// Save inserts or replaces a playlist and rewrites the document.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	if playlist == nil || playlist.ID == "" {
		return domain.NewValidationError("playlist", "", "playlist must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlists[playlist.ID] = *playlist
	return r.persistLocked()
}

// Load returns the playlist with the given id.
func (r *PlaylistRepository) Load(id string) (*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlist, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	return &playlist, nil
}

// LoadAll returns every stored playlist in unspecified order.
func (r *PlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlists := make([]*domain.Playlist, 0, len(r.playlists))
	for _, playlist := range r.playlists {
		copied := playlist
		playlists = append(playlists, &copied)
	}
	return playlists, nil
}

// Delete removes a playlist by id and rewrites the document.
func (r *PlaylistRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[id]; !ok {
		return nil
	}
	delete(r.playlists, id)
	return r.persistLocked()
}

// Exists reports whether a playlist with the id exists.
func (r *PlaylistRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.playlists[id]
	return ok
}

func (r *PlaylistRepository) persistLocked() error {
	doc := playlistDocument{Playlists: make([]playlistRecord, 0, len(r.playlists))}
	for _, playlist := range r.playlists {
		doc.Playlists = append(doc.Playlists, toPlaylistRecord(playlist))
	}
	return writeJSON(r.path, doc)
}

func toPlaylistRecord(playlist domain.Playlist) playlistRecord {
	return playlistRecord{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		TrackIDs:    playlist.TrackIDs,
		CreatedAt:   playlist.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   playlist.UpdatedAt.UTC().Format(time.RFC3339),
		IsDefault:   playlist.IsDefault,
	}
}

func (record playlistRecord) toDomain() domain.Playlist {
	createdAt, _ := time.Parse(time.RFC3339, record.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, record.UpdatedAt)
	return domain.Playlist{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		TrackIDs:    record.TrackIDs,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		IsDefault:   record.IsDefault,
	}
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)
