package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audiomock "github.com/auralplayer/aural/internal/adapter/audio/mock"
	"github.com/auralplayer/aural/internal/adapter/eventbus"
	mediamock "github.com/auralplayer/aural/internal/adapter/mediacontrol/mock"
	"github.com/auralplayer/aural/internal/adapter/repository/memory"
	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/logger"
	"github.com/auralplayer/aural/internal/ports"
	"github.com/auralplayer/aural/internal/queue"
)

type controlFixture struct {
	control *ControlService
	session *mediamock.Session
	player  *PlayerService
	engine  *audiomock.Engine
	bus     *eventbus.SyncBus
}

func newControlFixture(t *testing.T) *controlFixture {
	t.Helper()

	bus := eventbus.NewSync(nil)
	engine := audiomock.NewEngine(bus)
	player := NewPlayerService(logger.NewTestLogger(), engine, memory.NewTrackRepository(), bus, queue.NewTraversal())
	session := mediamock.NewSession()

	control, err := NewControlService(logger.NewTestLogger(), session, player, bus)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = control.Close()
		_ = player.Close()
		_ = bus.Close()
	})
	return &controlFixture{control: control, session: session, player: player, engine: engine, bus: bus}
}

func (f *controlFixture) settle() {
	f.engine.EmitMetadata(f.engine.Generation(), 3*time.Minute)
}

func (f *controlFixture) lastTransport(t *testing.T) mediamock.TransportUpdate {
	t.Helper()
	calls := f.session.TransportCalls()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}

func TestControlRequiresSession(t *testing.T) {
	bus := eventbus.NewSync(nil)
	defer func() { _ = bus.Close() }()
	engine := audiomock.NewEngine(bus)
	player := NewPlayerService(logger.NewTestLogger(), engine, memory.NewTrackRepository(), bus, queue.NewTraversal())
	defer func() { _ = player.Close() }()

	_, err := NewControlService(logger.NewTestLogger(), nil, player, bus)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestInitialTransportPublished(t *testing.T) {
	f := newControlFixture(t)

	assert.Equal(t, ports.TransportStopped, f.lastTransport(t).State)
	assert.Empty(t, f.session.NowPlayingCalls())
}

func TestTransportFollowsPlayerState(t *testing.T) {
	f := newControlFixture(t)
	f.player.SetQueue(testQueue(2), -1)

	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()
	assert.Equal(t, ports.TransportPlaying, f.lastTransport(t).State)

	require.NoError(t, f.player.Pause())
	assert.Equal(t, ports.TransportPaused, f.lastTransport(t).State)

	require.NoError(t, f.player.Stop())
	assert.Equal(t, ports.TransportStopped, f.lastTransport(t).State)
}

func TestNowPlayingPublishedOnTrackChange(t *testing.T) {
	f := newControlFixture(t)
	tracks := testQueue(2)
	tracks[0].Thumbnail = "/art/a.jpg"
	f.player.SetQueue(tracks, -1)

	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	calls := f.session.NowPlayingCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Track A", calls[0].Title)
	assert.Equal(t, "Artist", calls[0].Artist)
	assert.Equal(t, 3*time.Minute, calls[0].Duration)

	require.Len(t, calls[0].Artwork, 6)
	sizes := make([]int, 0, len(calls[0].Artwork))
	for _, art := range calls[0].Artwork {
		sizes = append(sizes, art.Size)
		assert.Equal(t, "/art/a.jpg", art.URL)
	}
	assert.Equal(t, []int{96, 128, 192, 256, 384, 512}, sizes)

	require.NoError(t, f.player.Next())
	f.settle()

	calls = f.session.NowPlayingCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Track B", calls[1].Title)
	assert.Empty(t, calls[1].Artwork)
}

func TestProgressDoesNotRepeatNowPlaying(t *testing.T) {
	f := newControlFixture(t)
	f.player.SetQueue(testQueue(1), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	before := len(f.session.NowPlayingCalls())
	f.engine.EmitProgress(f.engine.Generation(), 30*time.Second, 3*time.Minute)

	assert.Len(t, f.session.NowPlayingCalls(), before)
	assert.Equal(t, 30*time.Second, f.lastTransport(t).Position)
}

func TestCommandsDispatchToPlayer(t *testing.T) {
	f := newControlFixture(t)
	f.player.SetQueue(testQueue(3), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	commands := f.session.Commands()

	commands.OnPause()
	assert.Equal(t, domain.StatusPaused, f.player.Snapshot().Status)

	commands.OnPlay()
	assert.Equal(t, domain.StatusPlaying, f.player.Snapshot().Status)

	commands.OnNext()
	f.settle()
	assert.Equal(t, 1, f.player.Snapshot().CurrentIndex)

	commands.OnPrevious()
	f.settle()
	assert.Equal(t, 0, f.player.Snapshot().CurrentIndex)

	commands.OnStop()
	assert.Equal(t, domain.StatusStopped, f.player.Snapshot().Status)
}

func TestSeekByUsesDefaultStep(t *testing.T) {
	f := newControlFixture(t)
	f.player.SetQueue(testQueue(1), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()
	require.NoError(t, f.player.Seek(30*time.Second))

	commands := f.session.Commands()

	commands.OnSeekBy(0)
	assert.Equal(t, 40*time.Second, f.player.Snapshot().Position)

	commands.OnSeekBy(-15 * time.Second)
	assert.Equal(t, 25*time.Second, f.player.Snapshot().Position)
}

func TestSeekTo(t *testing.T) {
	f := newControlFixture(t)
	f.player.SetQueue(testQueue(1), -1)
	require.NoError(t, f.player.PlayTrackAt(0))
	f.settle()

	f.session.Commands().OnSeekTo(time.Minute)
	assert.Equal(t, time.Minute, f.player.Snapshot().Position)
}

func TestRejectedCommandDoesNotPanic(t *testing.T) {
	f := newControlFixture(t)

	// No queue loaded, so play and next are rejected by the player.
	commands := f.session.Commands()
	commands.OnPlay()
	commands.OnNext()

	assert.Equal(t, domain.StatusStopped, f.player.Snapshot().Status)
}

func TestCloseStopsForwarding(t *testing.T) {
	f := newControlFixture(t)
	require.NoError(t, f.control.Close())

	before := len(f.session.TransportCalls())
	f.player.SetQueue(testQueue(1), -1)
	require.NoError(t, f.player.PlayTrackAt(0))

	assert.Len(t, f.session.TransportCalls(), before)
}
