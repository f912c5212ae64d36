package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audiomock "github.com/auralplayer/aural/internal/adapter/audio/mock"
	"github.com/auralplayer/aural/internal/adapter/eventbus"
	"github.com/auralplayer/aural/internal/adapter/repository/memory"
	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/logger"
	"github.com/auralplayer/aural/internal/queue"
)

type playerFixture struct {
	player *PlayerService
	engine *audiomock.Engine
	tracks *memory.TrackRepository
	bus    *eventbus.SyncBus
}

func newPlayerFixture(t *testing.T) *playerFixture {
	t.Helper()

	bus := eventbus.NewSync(nil)
	engine := audiomock.NewEngine(bus)
	tracks := memory.NewTrackRepository()
	player := NewPlayerService(logger.NewTestLogger(), engine, tracks, bus, queue.NewTraversal())

	t.Cleanup(func() {
		_ = player.Close()
		_ = bus.Close()
	})
	return &playerFixture{player: player, engine: engine, tracks: tracks, bus: bus}
}

func testQueue(n int) []domain.Track {
	tracks := make([]domain.Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, domain.Track{
			ID:        string(rune('a' + i)),
			Title:     "Track " + string(rune('A'+i)),
			Artist:    "Artist",
			Duration:  3 * time.Minute,
			SourceURL: "/music/" + string(rune('a'+i)) + ".mp3",
		})
	}
	return tracks
}

// settle finishes an in-flight load: the engine reports metadata for
// its latest generation, which lets the player start playback.
func (f *playerFixture) settle() {
	f.engine.EmitMetadata(f.engine.Generation(), 3*time.Minute)
}

func TestPlayTrackAtLoadsAndPlays(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)

	require.NoError(t, f.player.PlayTrackAt(1))
	assert.Equal(t, domain.StatusLoading, f.player.Snapshot().Status)

	f.settle()

	snapshot := f.player.Snapshot()
	assert.Equal(t, domain.StatusPlaying, snapshot.Status)
	assert.Equal(t, 1, snapshot.CurrentIndex)
	require.NotNil(t, snapshot.CurrentTrack)
	assert.Equal(t, "b", snapshot.CurrentTrack.ID)
	assert.Equal(t, []string{"/music/b.mp3"}, f.engine.LoadCalls())
}

func TestPlayTrackAtInvalidIndex(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)

	assert.ErrorIs(t, f.player.PlayTrackAt(5), domain.ErrInvalidIndex)
	assert.ErrorIs(t, f.player.PlayTrackAt(-1), domain.ErrInvalidIndex)
}

func TestPlayWithoutTrack(t *testing.T) {
	f := newPlayerFixture(t)

	assert.ErrorIs(t, f.player.Play(), domain.ErrNoTrackLoaded)
	assert.ErrorIs(t, f.player.Pause(), domain.ErrNoTrackLoaded)
}

func TestPlayCountIncrementsPerAssignment(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)

	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	track, err := f.tracks.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, track.PlayCount, "replaying the same track counts twice")
}

func TestPauseAndToggle(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	require.NoError(t, f.player.Pause())
	assert.Equal(t, domain.StatusPaused, f.player.Snapshot().Status)

	require.NoError(t, f.player.TogglePlay())
	assert.Equal(t, domain.StatusPlaying, f.player.Snapshot().Status)

	require.NoError(t, f.player.TogglePlay())
	assert.Equal(t, domain.StatusPaused, f.player.Snapshot().Status)
}

func TestStopPreservesTrackAndQueue(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(2))
	f.settle()
	f.engine.EmitProgress(f.engine.Generation(), time.Minute, 3*time.Minute)

	require.NoError(t, f.player.Stop())

	snapshot := f.player.Snapshot()
	assert.Equal(t, domain.StatusStopped, snapshot.Status)
	assert.Zero(t, snapshot.Position)
	require.NotNil(t, snapshot.CurrentTrack, "stop must not clear the current track")
	assert.Equal(t, "c", snapshot.CurrentTrack.ID)
	assert.Len(t, snapshot.Queue, 3)
}

func TestNextAdvancesSequentially(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	require.NoError(t, f.player.Next())
	f.settle()

	snapshot := f.player.Snapshot()
	assert.Equal(t, 1, snapshot.CurrentIndex)
	assert.Equal(t, "b", snapshot.CurrentTrack.ID)
}

func TestNextAtEndStopsWithoutWrap(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	require.NoError(t, f.player.Next())

	snapshot := f.player.Snapshot()
	assert.Equal(t, domain.StatusStopped, snapshot.Status)
	assert.Equal(t, "b", snapshot.CurrentTrack.ID)
}

func TestNextWrapsUnderRepeatAll(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.SetRepeatMode(domain.RepeatAll))
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	require.NoError(t, f.player.Next())
	f.settle()

	assert.Equal(t, 0, f.player.Snapshot().CurrentIndex)
}

func TestNextOnEmptyQueue(t *testing.T) {
	f := newPlayerFixture(t)

	assert.ErrorIs(t, f.player.Next(), domain.ErrQueueEmpty)
	assert.ErrorIs(t, f.player.Previous(), domain.ErrQueueEmpty)
}

func TestEndedAdvancesToNextTrack(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	f.engine.EmitEnded(f.engine.Generation())
	f.settle()

	snapshot := f.player.Snapshot()
	assert.Equal(t, 1, snapshot.CurrentIndex)
	assert.Equal(t, domain.StatusPlaying, snapshot.Status)
}

func TestEndedAtQueueEndStops(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	f.engine.EmitEnded(f.engine.Generation())

	snapshot := f.player.Snapshot()
	assert.Equal(t, domain.StatusStopped, snapshot.Status)
	assert.Zero(t, snapshot.Position)
	assert.Equal(t, "b", snapshot.CurrentTrack.ID)
}

func TestEndedWithRepeatOneRestartsAndCountsAgain(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.SetRepeatMode(domain.RepeatOne))
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	f.engine.EmitEnded(f.engine.Generation())
	f.settle()

	snapshot := f.player.Snapshot()
	assert.Equal(t, 0, snapshot.CurrentIndex)
	assert.Equal(t, domain.StatusPlaying, snapshot.Status)
	assert.Equal(t, []string{"/music/a.mp3", "/music/a.mp3"}, f.engine.LoadCalls())

	track, err := f.tracks.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, track.PlayCount)
}

func TestStaleEventsAreDiscarded(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)

	require.NoError(t, f.player.PlayTrackAt(0))
	stale := f.engine.Generation()
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	f.engine.EmitMetadata(stale, time.Hour)
	f.engine.EmitProgress(stale, 59*time.Minute, time.Hour)
	f.engine.EmitEnded(stale)
	f.engine.EmitFailed(stale, "load", errors.New("decode error"))

	snapshot := f.player.Snapshot()
	assert.Equal(t, "b", snapshot.CurrentTrack.ID, "settled state reflects only the second load")
	assert.Equal(t, domain.StatusPlaying, snapshot.Status)
	assert.Equal(t, 3*time.Minute, snapshot.Duration)
	assert.NoError(t, snapshot.Err)
}

func TestEngineFailureExposesErrorAndKeepsNavigation(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.PlayTrackAt(0))

	var playerErr *domain.PlayerErrorEvent
	f.bus.Subscribe(domain.EventPlayerError, func(event domain.Event) {
		e := event.(domain.PlayerErrorEvent)
		playerErr = &e
	})

	loadErr := errors.New("cannot decode")
	f.engine.EmitFailed(f.engine.Generation(), "load", loadErr)

	snapshot := f.player.Snapshot()
	assert.Equal(t, domain.StatusFailed, snapshot.Status)
	assert.ErrorIs(t, snapshot.Err, loadErr)
	require.NotNil(t, playerErr)
	assert.Equal(t, "a", playerErr.Track.ID)

	// A failed track does not block navigation.
	require.NoError(t, f.player.Next())
	f.settle()
	assert.Equal(t, domain.StatusPlaying, f.player.Snapshot().Status)
}

func TestSeekClampsOptimistically(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(1), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	require.NoError(t, f.player.Seek(10*time.Minute))
	assert.Equal(t, 3*time.Minute, f.player.Snapshot().Position)

	require.NoError(t, f.player.Seek(-5*time.Second))
	assert.Zero(t, f.player.Snapshot().Position)
}

func TestVolumeAndRateClamp(t *testing.T) {
	f := newPlayerFixture(t)

	f.player.SetVolume(1.5)
	assert.Equal(t, 1.0, f.player.Snapshot().Volume)
	assert.Equal(t, 1.0, f.engine.Volume())

	f.player.SetVolume(-0.2)
	assert.Equal(t, 0.0, f.player.Snapshot().Volume)

	f.player.SetRate(10)
	assert.Equal(t, 4.0, f.player.Snapshot().Rate)

	f.player.SetRate(0.1)
	assert.Equal(t, 0.25, f.player.Snapshot().Rate)
}

func TestSetRepeatModeRejectsUnknown(t *testing.T) {
	f := newPlayerFixture(t)

	err := f.player.SetRepeatMode("sideways")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, domain.RepeatNone, f.player.Snapshot().Repeat)
}

func TestModeChangesPublishEvents(t *testing.T) {
	f := newPlayerFixture(t)

	var modes []domain.ModeChangedEvent
	f.bus.Subscribe(domain.EventModeChanged, func(event domain.Event) {
		modes = append(modes, event.(domain.ModeChangedEvent))
	})

	require.NoError(t, f.player.SetRepeatMode(domain.RepeatAll))
	f.player.SetShuffle(true)

	require.Len(t, modes, 2)
	assert.Equal(t, domain.RepeatAll, modes[0].Repeat)
	assert.True(t, modes[1].Shuffle)
}

func TestTrackDeletionCascadesIntoQueueAndCurrent(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	f.bus.Publish(domain.NewTrackDeletedEvent("b"))

	snapshot := f.player.Snapshot()
	assert.Nil(t, snapshot.CurrentTrack)
	assert.Equal(t, -1, snapshot.CurrentIndex)
	assert.Equal(t, domain.StatusStopped, snapshot.Status)
	assert.Len(t, snapshot.Queue, 2)
}

func TestTrackDeletionOfOtherEntryKeepsPlaying(t *testing.T) {
	f := newPlayerFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(1))
	f.settle()

	f.bus.Publish(domain.NewTrackDeletedEvent("a"))

	snapshot := f.player.Snapshot()
	require.NotNil(t, snapshot.CurrentTrack)
	assert.Equal(t, "b", snapshot.CurrentTrack.ID)
	assert.Equal(t, 0, snapshot.CurrentIndex, "index shifts left when an earlier entry is removed")
	assert.Equal(t, domain.StatusPlaying, snapshot.Status)
}

func TestApplySettingsRestoresPreferences(t *testing.T) {
	f := newPlayerFixture(t)

	f.player.ApplySettings(domain.Settings{
		Volume:  0.3,
		Rate:    2.0,
		Repeat:  domain.RepeatAll,
		Shuffle: true,
	})

	snapshot := f.player.Snapshot()
	assert.Equal(t, 0.3, snapshot.Volume)
	assert.Equal(t, 2.0, snapshot.Rate)
	assert.Equal(t, domain.RepeatAll, snapshot.Repeat)
	assert.True(t, snapshot.Shuffle)
	assert.Equal(t, 0.3, f.engine.Volume())
	assert.Equal(t, 2.0, f.engine.Rate())
}

func TestStateEventPublishedOnMutation(t *testing.T) {
	f := newPlayerFixture(t)

	var states []domain.PlayerSnapshot
	f.bus.Subscribe(domain.EventPlayerState, func(event domain.Event) {
		states = append(states, event.(domain.PlayerStateEvent).State)
	})

	f.player.SetQueue(testQueue(2), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.Equal(t, domain.StatusPlaying, last.Status)
	assert.Equal(t, "a", last.CurrentTrack.ID)
}
