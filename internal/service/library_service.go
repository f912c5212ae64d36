package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/library"
	"github.com/auralplayer/aural/internal/ports"
)

// LibraryService manages the track collection: listing and filtering,
// per-track edits, and the recursive folder scan that ingests audio
// files through a metadata reader. At most one scan runs at a time.
type LibraryService struct {
	logger *slog.Logger
	tracks ports.TrackRepository
	reader ports.MetadataReader
	bus    ports.EventBus

	supportedExts []string

	mu         sync.Mutex
	scanning   bool
	cancelScan context.CancelFunc
}

// NewLibraryService creates a library service over the given track
// repository and metadata reader.
func NewLibraryService(
	logger *slog.Logger,
	tracks ports.TrackRepository,
	reader ports.MetadataReader,
	bus ports.EventBus,
) *LibraryService {
	return &LibraryService{
		logger:        logger,
		tracks:        tracks,
		reader:        reader,
		bus:           bus,
		supportedExts: []string{".mp3", ".wav", ".flac", ".ogg"},
	}
}

// List returns every track ordered by title.
func (s *LibraryService) List() ([]domain.Track, error) {
	return s.Filter(domain.FilterSpec{})
}

// Filter returns the tracks passing the given predicates in the
// requested sort order.
func (s *LibraryService) Filter(spec domain.FilterSpec) ([]domain.Track, error) {
	stored, err := s.tracks.GetAll()
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(stored))
	for _, track := range stored {
		tracks = append(tracks, *track)
	}
	return library.Apply(tracks, spec), nil
}

// Get returns a single track by id.
func (s *LibraryService) Get(id string) (*domain.Track, error) {
	return s.tracks.Get(id)
}

// SetRating sets a track's rating. Ratings outside 0..5 are rejected.
func (s *LibraryService) SetRating(trackID string, rating int) error {
	if rating < 0 || rating > 5 {
		return domain.ErrInvalidRating
	}
	return s.updateTrack(trackID, func(track *domain.Track) {
		track.Rating = rating
	})
}

// AddTag adds a label to a track. Adding a tag it already carries is a
// no-op.
func (s *LibraryService) AddTag(trackID, tag string) error {
	if tag == "" {
		return domain.NewValidationError("tag", tag, "tag must not be empty")
	}
	return s.updateTrack(trackID, func(track *domain.Track) {
		if !track.HasTag(tag) {
			track.Tags = append(track.Tags, tag)
		}
	})
}

// RemoveTag removes a label from a track. Removing an absent tag is a
// no-op.
func (s *LibraryService) RemoveTag(trackID, tag string) error {
	return s.updateTrack(trackID, func(track *domain.Track) {
		filtered := track.Tags[:0]
		for _, existing := range track.Tags {
			if existing != tag {
				filtered = append(filtered, existing)
			}
		}
		track.Tags = filtered
	})
}

// DeleteTrack removes a track from the library. Playlists and the
// player react to the published deletion event.
func (s *LibraryService) DeleteTrack(trackID string) error {
	if _, err := s.tracks.Get(trackID); err != nil {
		return err
	}
	if err := s.tracks.Delete(trackID); err != nil {
		return err
	}

	s.bus.Publish(domain.NewTrackDeletedEvent(trackID))
	s.bus.Publish(domain.NewLibraryChangedEvent())
	return nil
}

// ScanFolder walks the folder recursively, ingests every supported
// audio file and stores the resulting tracks. Files that cannot be
// read are skipped, not errors. Progress is reported through scan
// events; CancelScan aborts a running scan between files.
func (s *LibraryService) ScanFolder(folderPath string) ([]domain.Track, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, domain.NewServiceError("LibraryService", "ScanFolder", "scan already in progress", nil)
	}
	s.scanning = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelScan = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
	}()

	s.bus.Publish(domain.NewScanStartedEvent(folderPath))

	files, err := s.collectAudioFiles(ctx, folderPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.bus.Publish(domain.NewScanCancelledEvent("cancelled"))
			return nil, domain.ErrScanCancelled
		}
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(files))
	for i, path := range files {
		select {
		case <-ctx.Done():
			s.bus.Publish(domain.NewScanCancelledEvent("cancelled"))
			return tracks, domain.ErrScanCancelled
		default:
		}

		track, err := s.reader.ReadMetadata(path)
		if err != nil {
			s.logger.Debug("skipping unreadable file",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}

		track.ID = uuid.NewString()
		track.DateAdded = time.Now()
		if err := s.tracks.Put(track); err != nil {
			s.logger.Warn("storing scanned track failed",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		tracks = append(tracks, *track)

		s.bus.Publish(domain.NewScanProgressEvent(domain.ScanProgress{
			CurrentFile:  path,
			FilesScanned: i + 1,
			TotalFiles:   len(files),
			TracksFound:  len(tracks),
		}))
	}

	s.bus.Publish(domain.NewScanCompletedEvent(tracks))
	if len(tracks) > 0 {
		s.bus.Publish(domain.NewLibraryChangedEvent())
	}
	return tracks, nil
}

// CancelScan aborts a running folder scan.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.NewServiceError("LibraryService", "CancelScan", "no scan in progress", nil)
	}
	if s.cancelScan != nil {
		s.cancelScan()
	}
	return nil
}

// IsScanning reports whether a folder scan is in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// IsFormatSupported reports whether the file's extension is playable.
func (s *LibraryService) IsFormatSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range s.supportedExts {
		if ext == supported {
			return true
		}
	}
	return false
}

// SupportedFormats returns the playable file extensions.
func (s *LibraryService) SupportedFormats() []string {
	formats := make([]string, len(s.supportedExts))
	copy(formats, s.supportedExts)
	return formats
}

func (s *LibraryService) collectAudioFiles(ctx context.Context, folderPath string) ([]string, error) {
	files := make([]string, 0)

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		if err != nil {
			// Skip unreadable entries, keep walking.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if s.IsFormatSupported(path) {
			files = append(files, path)
		}
		return nil
	})

	if errors.Is(err, context.Canceled) {
		return files, context.Canceled
	}
	return files, err
}

// updateTrack loads, edits and stores one track, then announces the
// library change.
func (s *LibraryService) updateTrack(trackID string, edit func(*domain.Track)) error {
	track, err := s.tracks.Get(trackID)
	if err != nil {
		return err
	}
	edit(track)
	if err := s.tracks.Put(track); err != nil {
		return err
	}

	s.bus.Publish(domain.NewLibraryChangedEvent())
	return nil
}

// Close aborts a running scan.
func (s *LibraryService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning && s.cancelScan != nil {
		s.cancelScan()
	}
	return nil
}
