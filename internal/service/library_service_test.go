package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralplayer/aural/internal/adapter/eventbus"
	"github.com/auralplayer/aural/internal/adapter/repository/memory"
	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/logger"
)

// fakeReader returns metadata derived from the file name, or an error
// for paths it was told to fail. onRead runs before every read.
type fakeReader struct {
	fail   map[string]bool
	onRead func(path string)
}

func (r *fakeReader) ReadMetadata(path string) (*domain.Track, error) {
	if r.onRead != nil {
		r.onRead(path)
	}
	if r.fail[filepath.Base(path)] {
		return nil, errors.New("corrupt file")
	}

	name := filepath.Base(path)
	return &domain.Track{
		Title:     name[:len(name)-len(filepath.Ext(name))],
		Artist:    "Scanned Artist",
		Duration:  2 * time.Minute,
		SourceURL: path,
	}, nil
}

type libraryFixture struct {
	service *LibraryService
	tracks  *memory.TrackRepository
	reader  *fakeReader
	bus     *eventbus.SyncBus
}

func newLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()

	bus := eventbus.NewSync(nil)
	tracks := memory.NewTrackRepository()
	reader := &fakeReader{fail: make(map[string]bool)}
	service := NewLibraryService(logger.NewTestLogger(), tracks, reader, bus)

	t.Cleanup(func() {
		_ = service.Close()
		_ = bus.Close()
	})
	return &libraryFixture{service: service, tracks: tracks, reader: reader, bus: bus}
}

// writeFiles creates empty files under dir and returns dir.
func writeFiles(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return dir
}

func TestListOrdersByTitle(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "Zebra"}))
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "2", Title: "apple"}))
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "3", Title: "Mango"}))

	tracks, err := f.service.List()
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "apple", tracks[0].Title)
	assert.Equal(t, "Mango", tracks[1].Title)
	assert.Equal(t, "Zebra", tracks[2].Title)
}

func TestFilterAppliesSpec(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "Blue Night", Genre: "Jazz"}))
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "2", Title: "Red Day", Genre: "Rock"}))

	tracks, err := f.service.Filter(domain.FilterSpec{Genres: []string{"jazz"}})
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1", tracks[0].ID)
}

func TestSetRating(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "A"}))

	require.NoError(t, f.service.SetRating("1", 4))

	track, err := f.tracks.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 4, track.Rating)
}

func TestSetRatingRejectsOutOfRange(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "A", Rating: 3}))

	assert.ErrorIs(t, f.service.SetRating("1", 6), domain.ErrInvalidRating)
	assert.ErrorIs(t, f.service.SetRating("1", -1), domain.ErrInvalidRating)

	track, err := f.tracks.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 3, track.Rating)
}

func TestAddTagIsIdempotent(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "A"}))

	require.NoError(t, f.service.AddTag("1", "chill"))
	require.NoError(t, f.service.AddTag("1", "chill"))
	require.NoError(t, f.service.AddTag("1", "late"))

	track, err := f.tracks.Get("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"chill", "late"}, track.Tags)
}

func TestRemoveTag(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "A", Tags: []string{"chill", "late"}}))

	require.NoError(t, f.service.RemoveTag("1", "chill"))
	require.NoError(t, f.service.RemoveTag("1", "absent"))

	track, err := f.tracks.Get("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, track.Tags)
}

func TestDeleteTrackPublishesEvents(t *testing.T) {
	f := newLibraryFixture(t)
	require.NoError(t, f.tracks.Put(&domain.Track{ID: "1", Title: "A"}))

	var deleted []string
	changed := 0
	f.bus.Subscribe(domain.EventTrackDeleted, func(event domain.Event) {
		if e, ok := event.(domain.TrackDeletedEvent); ok {
			deleted = append(deleted, e.TrackID)
		}
	})
	f.bus.Subscribe(domain.EventLibraryChanged, func(domain.Event) { changed++ })

	require.NoError(t, f.service.DeleteTrack("1"))

	_, err := f.tracks.Get("1")
	assert.ErrorIs(t, err, domain.ErrTrackNotFound)
	assert.Equal(t, []string{"1"}, deleted)
	assert.Equal(t, 1, changed)
}

func TestDeleteUnknownTrack(t *testing.T) {
	f := newLibraryFixture(t)

	assert.ErrorIs(t, f.service.DeleteTrack("missing"), domain.ErrTrackNotFound)
}

func TestScanFolderIngestsSupportedFiles(t *testing.T) {
	f := newLibraryFixture(t)
	dir := writeFiles(t,
		"one.mp3",
		"two.flac",
		filepath.Join("nested", "three.wav"),
		"notes.txt",
		"cover.jpg",
	)

	var started, completed, changed int
	var progress []domain.ScanProgress
	f.bus.Subscribe(domain.EventScanStarted, func(domain.Event) { started++ })
	f.bus.Subscribe(domain.EventScanProgress, func(event domain.Event) {
		if e, ok := event.(domain.ScanProgressEvent); ok {
			progress = append(progress, e.Progress)
		}
	})
	f.bus.Subscribe(domain.EventScanCompleted, func(domain.Event) { completed++ })
	f.bus.Subscribe(domain.EventLibraryChanged, func(domain.Event) { changed++ })

	tracks, err := f.service.ScanFolder(dir)
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	for _, track := range tracks {
		assert.NotEmpty(t, track.ID)
		assert.False(t, track.DateAdded.IsZero())
		assert.Equal(t, "Scanned Artist", track.Artist)
	}

	stored, err := f.tracks.GetAll()
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, changed)
	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[2].TotalFiles)
	assert.Equal(t, 3, progress[2].TracksFound)
	assert.False(t, f.service.IsScanning())
}

func TestScanFolderSkipsUnreadableFiles(t *testing.T) {
	f := newLibraryFixture(t)
	dir := writeFiles(t, "good.mp3", "bad.mp3")
	f.reader.fail["bad.mp3"] = true

	tracks, err := f.service.ScanFolder(dir)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "good", tracks[0].Title)
}

func TestScanFolderCancellation(t *testing.T) {
	f := newLibraryFixture(t)
	dir := writeFiles(t, "one.mp3", "two.mp3", "three.mp3")

	cancelled := 0
	f.bus.Subscribe(domain.EventScanCancelled, func(domain.Event) { cancelled++ })

	reads := 0
	f.reader.onRead = func(string) {
		reads++
		if reads == 1 {
			require.NoError(t, f.service.CancelScan())
		}
	}

	tracks, err := f.service.ScanFolder(dir)
	assert.ErrorIs(t, err, domain.ErrScanCancelled)
	assert.Len(t, tracks, 1)
	assert.Equal(t, 1, cancelled)
	assert.False(t, f.service.IsScanning())
}

func TestCancelScanWithoutScan(t *testing.T) {
	f := newLibraryFixture(t)

	var serr *domain.ServiceError
	require.ErrorAs(t, f.service.CancelScan(), &serr)
}

func TestSupportedFormats(t *testing.T) {
	f := newLibraryFixture(t)

	assert.True(t, f.service.IsFormatSupported("/music/song.MP3"))
	assert.True(t, f.service.IsFormatSupported("song.flac"))
	assert.False(t, f.service.IsFormatSupported("song.m4a"))
	assert.Equal(t, []string{".mp3", ".wav", ".flac", ".ogg"}, f.service.SupportedFormats())
}
