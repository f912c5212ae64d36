package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

const tracksFile = "tracks.json"

// trackDocument is the on-disk shape of the track index.
type trackDocument struct {
	Tracks []trackRecord `json:"tracks"`
}

// trackRecord mirrors the ingester's track metadata record: top-level
// playback fields plus a nested metadata object.
type trackRecord struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Artist    string         `json:"artist"`
	Duration  float64        `json:"duration"`
	URL       string         `json:"url"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Metadata  metadataRecord `json:"metadata"`
	Tags      []string       `json:"tags"`
	Rating    int            `json:"rating"`
	PlayCount int            `json:"playCount"`
	DateAdded string         `json:"dateAdded"`
}

type metadataRecord struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album,omitempty"`
	Year        int     `json:"year,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Uploader    string  `json:"uploader,omitempty"`
	Description string  `json:"description,omitempty"`
}

// TrackRepository persists tracks to tracks.json under the data
// directory. The full working set stays in memory; every mutation
// rewrites the document. Values are copied on the way in and out so
// callers never share memory with the store.
type TrackRepository struct {
	path string

	mu     sync.RWMutex
	tracks map[string]domain.Track
}

// NewTrackRepository loads the track index from dir, tolerating a
// missing file.
func NewTrackRepository(dir string) (*TrackRepository, error) {
	r := &TrackRepository{
		path:   filepath.Join(dir, tracksFile),
		tracks: make(map[string]domain.Track),
	}

	var doc trackDocument
	if err := readJSON(r.path, &doc); err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	for _, record := range doc.Tracks {
		track := record.toDomain()
		r.tracks[track.ID] = track
	}
	return r, nil
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

// Put inserts or replaces a track and rewrites the document.
func (r *TrackRepository) Put(track *domain.Track) error {
	if track == nil || track.ID == "" {
		return domain.NewValidationError("track", "", "track must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks[track.ID] = copyTrack(*track)
	return r.persistLocked()
}

// Delete removes a track by id and rewrites the document.
func (r *TrackRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tracks[id]; !ok {
		return nil
	}
	delete(r.tracks, id)
	return r.persistLocked()
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

// copyTrack detaches the tag slice so callers never share memory with
// the store.
func copyTrack(track domain.Track) domain.Track {
	if track.Tags != nil {
		tags := make([]string, len(track.Tags))
		copy(tags, track.Tags)
		track.Tags = tags
	}
	return track
}

func (r *TrackRepository) persistLocked() error {
	doc := trackDocument{Tracks: make([]trackRecord, 0, len(r.tracks))}
	for _, track := range r.tracks {
		doc.Tracks = append(doc.Tracks, toTrackRecord(track))
	}
	return writeJSON(r.path, doc)
}

func toTrackRecord(track domain.Track) trackRecord {
	return trackRecord{
		ID:        track.ID,
		Title:     track.Title,
		Artist:    track.Artist,
		Duration:  track.Duration.Seconds(),
		URL:       track.SourceURL,
		Thumbnail: track.Thumbnail,
		Metadata: metadataRecord{
			Title:       track.Title,
			Artist:      track.Artist,
			Album:       track.Album,
			Year:        track.Year,
			Genre:       track.Genre,
			Duration:    track.Duration.Seconds(),
			Thumbnail:   track.Thumbnail,
			Uploader:    track.Uploader,
			Description: track.Description,
		},
		Tags:      track.Tags,
		Rating:    track.Rating,
		PlayCount: track.PlayCount,
		DateAdded: track.DateAdded.UTC().Format(time.RFC3339),
	}
}

func (record trackRecord) toDomain() domain.Track {
	dateAdded, _ := time.Parse(time.RFC3339, record.DateAdded)
	return domain.Track{
		ID:          record.ID,
		Title:       record.Title,
		Artist:      record.Artist,
		Album:       record.Metadata.Album,
		Genre:       record.Metadata.Genre,
		Year:        record.Metadata.Year,
		Duration:    time.Duration(record.Duration * float64(time.Second)),
		SourceURL:   record.URL,
		Thumbnail:   record.Thumbnail,
		Uploader:    record.Metadata.Uploader,
		Description: record.Metadata.Description,
		Tags:        record.Tags,
		Rating:      record.Rating,
		PlayCount:   record.PlayCount,
		DateAdded:   dateAdded,
	}
}

var _ ports.TrackRepository = (*TrackRepository)(nil)
