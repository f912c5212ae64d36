package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralplayer/aural/internal/config"
	"github.com/auralplayer/aural/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		LogLevel:     "warn",
		Engine:       config.EngineMock,
		MediaControl: false,
	}
}

func TestNewApplication(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.NotNil(t, a.Player())
	assert.NotNil(t, a.Library())
	assert.NotNil(t, a.Playlists())
	assert.NotNil(t, a.Settings())
	assert.NotNil(t, a.Bus())

	a.Shutdown()
	// A second shutdown must not panic.
	a.Shutdown()
}

func TestApplicationPersistence(t *testing.T) {
	cfg := testConfig()
	cfg.DataDir = t.TempDir()

	a, err := New(cfg)
	require.NoError(t, err)

	a.Player().SetVolume(0.42)
	a.Shutdown()

	reopened, err := New(cfg)
	require.NoError(t, err)
	defer reopened.Shutdown()

	assert.InDelta(t, 0.42, reopened.Settings().Get().Volume, 1e-9)
	assert.InDelta(t, 0.42, reopened.Player().Snapshot().Volume, 1e-9)
}

func TestApplicationDefaultPlaylistFollowsLibrary(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Shutdown()

	playlists, err := a.Playlists().All()
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.True(t, playlists[0].IsDefault)
	assert.Empty(t, playlists[0].TrackIDs)
}

func TestApplicationRunStopsOnCancel(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestApplicationServicesCooperate(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Shutdown()

	track := &domain.Track{ID: "t1", Title: "Song", SourceURL: "/music/song.mp3"}
	require.NoError(t, a.trackRepo.Put(track))
	a.Bus().Publish(domain.NewLibraryChangedEvent())

	def, err := a.Playlists().EnsureDefault()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, def.TrackIDs)

	require.NoError(t, a.Library().SetRating("t1", 5))
	tracks, err := a.Library().List()
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 5, tracks[0].Rating)
}
