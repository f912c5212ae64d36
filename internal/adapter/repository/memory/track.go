// Package memory provides map-backed repositories. They satisfy the
// repository ports without touching disk and back both tests and
// ephemeral sessions.
package memory

import (
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// TrackRepository stores tracks in a map guarded by a RWMutex. Values
// are copied on the way in and out so callers never share memory with
// the store.
type TrackRepository struct {
	mu     sync.RWMutex
	tracks map[string]domain.Track
}

// NewTrackRepository creates an empty track repository.
func NewTrackRepository() *TrackRepository {
	return &TrackRepository{tracks: make(map[string]domain.Track)}
}

// Get returns the track with the given id.
func (r *TrackRepository) Get(id string) (*domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	copied := copyTrack(track)
	return &copied, nil
}

// Put inserts or replaces a track record.
func (r *TrackRepository) Put(track *domain.Track) error {
	if track == nil || track.ID == "" {
		return domain.NewValidationError("track", "", "track must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks[track.ID] = copyTrack(*track)
	return nil
}

// Delete removes a track by id. Unknown ids are a no-op.
func (r *TrackRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tracks, id)
	return nil
}

// GetAll returns every stored track in unspecified order.
func (r *TrackRepository) GetAll() ([]*domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]*domain.Track, 0, len(r.tracks))
	for _, track := range r.tracks {
		copied := copyTrack(track)
		tracks = append(tracks, &copied)
	}
	return tracks, nil
}

func copyTrack(track domain.Track) domain.Track {
	if track.Tags != nil {
		tags := make([]string, len(track.Tags))
		copy(tags, track.Tags)
		track.Tags = tags
	}
	return track
}

var _ ports.TrackRepository = (*TrackRepository)(nil)
