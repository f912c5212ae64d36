package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// DefaultPlaylistName is the name of the system-maintained playlist
// that always mirrors the full track collection.
const DefaultPlaylistName = "All Tracks"

// PlaylistService manages playlist records and their derived views.
// Track references are resolved through the track repository at read
// time; dangling ids are filtered out, never an error. Events are
// published after the lock is released.
type PlaylistService struct {
	logger    *slog.Logger
	playlists ports.PlaylistRepository
	tracks    ports.TrackRepository
	bus       ports.EventBus

	mu sync.Mutex

	subscriptions []domain.SubscriptionID
}

// NewPlaylistService creates the playlist service and subscribes it to
// track deletions so playlists drop their references.
func NewPlaylistService(
	logger *slog.Logger,
	playlists ports.PlaylistRepository,
	tracks ports.TrackRepository,
	bus ports.EventBus,
) *PlaylistService {
	s := &PlaylistService{
		logger:    logger,
		playlists: playlists,
		tracks:    tracks,
		bus:       bus,
	}

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(domain.EventTrackDeleted, s.handleTrackDeleted),
	)
	return s
}

// Create makes a new playlist with a fresh id.
func (s *PlaylistService) Create(name, description string, trackIDs []string) (*domain.Playlist, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", name, "playlist name must not be empty")
	}

	now := time.Now()
	playlist := &domain.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		TrackIDs:    append([]string(nil), trackIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	err := s.playlists.Save(playlist)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publishUpdated(playlist.ID)
	return playlist, nil
}

// Get returns the playlist with the given id.
func (s *PlaylistService) Get(id string) (*domain.Playlist, error) {
	return s.playlists.Load(id)
}

// All returns every playlist.
func (s *PlaylistService) All() ([]*domain.Playlist, error) {
	return s.playlists.LoadAll()
}

// Update renames or redescribes a playlist. The default playlist is
// system managed and rejects edits.
func (s *PlaylistService) Update(id, name, description string) error {
	err := s.mutate(id, func(playlist *domain.Playlist) error {
		if playlist.IsDefault {
			return domain.ErrDefaultPlaylist
		}
		playlist.Name = name
		playlist.Description = description
		return nil
	})
	if err != nil {
		return err
	}

	s.publishUpdated(id)
	return nil
}

// Delete removes a playlist. The default playlist cannot be deleted.
func (s *PlaylistService) Delete(id string) error {
	s.mu.Lock()
	playlist, err := s.playlists.Load(id)
	if err == nil {
		if playlist.IsDefault {
			err = domain.ErrDefaultPlaylist
		} else {
			err = s.playlists.Delete(id)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publishUpdated(id)
	return nil
}

// AddTrack appends a track reference. Duplicates are permitted.
func (s *PlaylistService) AddTrack(playlistID, trackID string) error {
	err := s.mutate(playlistID, func(playlist *domain.Playlist) error {
		playlist.TrackIDs = append(playlist.TrackIDs, trackID)
		return nil
	})
	if err != nil {
		return err
	}

	s.publishUpdated(playlistID)
	return nil
}

// RemoveTrack removes the reference at index.
func (s *PlaylistService) RemoveTrack(playlistID string, index int) error {
	err := s.mutate(playlistID, func(playlist *domain.Playlist) error {
		if index < 0 || index >= len(playlist.TrackIDs) {
			return domain.NewValidationError("index", index, "track index out of range")
		}
		playlist.TrackIDs = append(playlist.TrackIDs[:index], playlist.TrackIDs[index+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.publishUpdated(playlistID)
	return nil
}

// RemoveTrackEverywhere drops every reference to the track id from
// every playlist, the default one included.
func (s *PlaylistService) RemoveTrackEverywhere(trackID string) error {
	s.mu.Lock()
	playlists, err := s.playlists.LoadAll()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	var touched []string
	for _, playlist := range playlists {
		filtered := playlist.TrackIDs[:0]
		for _, id := range playlist.TrackIDs {
			if id != trackID {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == len(playlist.TrackIDs) {
			continue
		}
		playlist.TrackIDs = filtered
		playlist.UpdatedAt = time.Now()
		if err := s.playlists.Save(playlist); err != nil {
			s.mu.Unlock()
			return err
		}
		touched = append(touched, playlist.ID)
	}
	s.mu.Unlock()

	for _, id := range touched {
		s.publishUpdated(id)
	}
	return nil
}

// Reorder moves the entry at from to position to, preserving all other
// relative order. Out-of-range indices make the whole operation a
// validation no-op.
func (s *PlaylistService) Reorder(playlistID string, from, to int) error {
	changed := false
	err := s.mutate(playlistID, func(playlist *domain.Playlist) error {
		length := len(playlist.TrackIDs)
		if from < 0 || from >= length {
			return domain.NewValidationError("fromIndex", from, "index out of range")
		}
		if to < 0 || to >= length {
			return domain.NewValidationError("toIndex", to, "index out of range")
		}
		if from == to {
			return nil
		}

		moved := playlist.TrackIDs[from]
		ids := append(playlist.TrackIDs[:from], playlist.TrackIDs[from+1:]...)
		ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)
		playlist.TrackIDs = ids
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.publishUpdated(playlistID)
	}
	return nil
}

// mutate loads, edits, stamps and saves one playlist under the lock.
func (s *PlaylistService) mutate(playlistID string, edit func(*domain.Playlist) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, err := s.playlists.Load(playlistID)
	if err != nil {
		return err
	}
	if err := edit(playlist); err != nil {
		return err
	}
	playlist.UpdatedAt = time.Now()
	return s.playlists.Save(playlist)
}

// ResolveTracks returns the playlist's tracks in order, skipping
// dangling references.
func (s *PlaylistService) ResolveTracks(playlistID string) ([]domain.Track, error) {
	playlist, err := s.playlists.Load(playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(playlist.TrackIDs))
	for _, id := range playlist.TrackIDs {
		track, err := s.tracks.Get(id)
		if err != nil {
			continue
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

// Stats computes derived figures for a playlist, ignoring dangling
// references.
func (s *PlaylistService) Stats(playlistID string) (*domain.PlaylistStats, error) {
	tracks, err := s.ResolveTracks(playlistID)
	if err != nil {
		return nil, err
	}

	stats := &domain.PlaylistStats{TrackCount: len(tracks)}
	var ratingSum int
	for _, track := range tracks {
		stats.TotalDuration += track.Duration
		ratingSum += track.Rating
	}
	if len(tracks) > 0 {
		stats.AverageRating = float64(ratingSum) / float64(len(tracks))
	}
	return stats, nil
}

// Search returns playlists whose name or description contains the
// query, case-insensitively.
func (s *PlaylistService) Search(query string) ([]*domain.Playlist, error) {
	playlists, err := s.playlists.LoadAll()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	matches := make([]*domain.Playlist, 0)
	for _, playlist := range playlists {
		if strings.Contains(strings.ToLower(playlist.Name), query) ||
			strings.Contains(strings.ToLower(playlist.Description), query) {
			matches = append(matches, playlist)
		}
	}
	return matches, nil
}

// Export builds a portable snapshot of the playlist with resolved
// track metadata and no internal ids.
func (s *PlaylistService) Export(playlistID string) (*domain.PlaylistExport, error) {
	playlist, err := s.playlists.Load(playlistID)
	if err != nil {
		return nil, err
	}
	tracks, err := s.ResolveTracks(playlistID)
	if err != nil {
		return nil, err
	}

	exported := make([]domain.ExportedTrack, 0, len(tracks))
	var totalSeconds float64
	for _, track := range tracks {
		exported = append(exported, domain.ExportedTrack{
			Title:   track.Title,
			Artist:  track.Artist,
			Seconds: track.Duration.Seconds(),
			URL:     track.SourceURL,
		})
		totalSeconds += track.Duration.Seconds()
	}

	return &domain.PlaylistExport{
		Playlist: domain.ExportedPlaylist{
			Name:        playlist.Name,
			Description: playlist.Description,
			Tracks:      exported,
		},
		Metadata: domain.ExportMetadata{
			ExportedAt:    time.Now(),
			TotalTracks:   len(exported),
			TotalDuration: totalSeconds,
		},
	}, nil
}

// Import materializes a snapshot into new track and playlist records,
// always under fresh ids so imports never collide with existing ones.
func (s *PlaylistService) Import(snapshot *domain.PlaylistExport) (*domain.Playlist, error) {
	if snapshot == nil {
		return nil, domain.NewValidationError("snapshot", nil, "snapshot must not be nil")
	}

	now := time.Now()
	trackIDs := make([]string, 0, len(snapshot.Playlist.Tracks))
	for _, exported := range snapshot.Playlist.Tracks {
		track := &domain.Track{
			ID:        uuid.NewString(),
			Title:     exported.Title,
			Artist:    exported.Artist,
			Duration:  time.Duration(exported.Seconds * float64(time.Second)),
			SourceURL: exported.URL,
			DateAdded: now,
		}
		if err := s.tracks.Put(track); err != nil {
			return nil, err
		}
		trackIDs = append(trackIDs, track.ID)
	}

	playlist := &domain.Playlist{
		ID:          uuid.NewString(),
		Name:        snapshot.Playlist.Name,
		Description: snapshot.Playlist.Description,
		TrackIDs:    trackIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	err := s.playlists.Save(playlist)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publishUpdated(playlist.ID)
	return playlist, nil
}

// EnsureDefault regenerates the system "All Tracks" playlist from the
// current track collection, creating it on first use.
func (s *PlaylistService) EnsureDefault() (*domain.Playlist, error) {
	s.mu.Lock()
	tracks, err := s.tracks.GetAll()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Title != tracks[j].Title {
			return tracks[i].Title < tracks[j].Title
		}
		return tracks[i].ID < tracks[j].ID
	})
	trackIDs := make([]string, 0, len(tracks))
	for _, track := range tracks {
		trackIDs = append(trackIDs, track.ID)
	}

	playlists, err := s.playlists.LoadAll()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	var defaultPlaylist *domain.Playlist
	for _, playlist := range playlists {
		if playlist.IsDefault {
			defaultPlaylist = playlist
			break
		}
	}

	now := time.Now()
	if defaultPlaylist == nil {
		defaultPlaylist = &domain.Playlist{
			ID:        uuid.NewString(),
			Name:      DefaultPlaylistName,
			IsDefault: true,
			CreatedAt: now,
		}
	}
	defaultPlaylist.TrackIDs = trackIDs
	defaultPlaylist.UpdatedAt = now

	if err := s.playlists.Save(defaultPlaylist); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.publishUpdated(defaultPlaylist.ID)
	return defaultPlaylist, nil
}

// Close releases the event subscriptions.
func (s *PlaylistService) Close() error {
	for _, id := range s.subscriptions {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func (s *PlaylistService) handleTrackDeleted(event domain.Event) {
	e, ok := event.(domain.TrackDeletedEvent)
	if !ok {
		return
	}
	if err := s.RemoveTrackEverywhere(e.TrackID); err != nil {
		s.logger.Warn("dropping deleted track from playlists failed",
			slog.String("track_id", e.TrackID),
			slog.Any("error", err))
	}
}

func (s *PlaylistService) publishUpdated(playlistID string) {
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(playlistID))
}
