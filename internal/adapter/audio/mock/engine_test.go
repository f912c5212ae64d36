package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralplayer/aural/internal/adapter/eventbus"
	"github.com/auralplayer/aural/internal/domain"
)

func TestLoadAssignsFreshGenerations(t *testing.T) {
	engine := NewEngine(nil)

	gen1 := engine.Load("/music/a.mp3")
	gen2 := engine.Load("/music/b.mp3")

	assert.Equal(t, domain.Generation(1), gen1)
	assert.Equal(t, domain.Generation(2), gen2)
	assert.Equal(t, []string{"/music/a.mp3", "/music/b.mp3"}, engine.LoadCalls())
	assert.Equal(t, "/music/b.mp3", engine.Locator())
}

func TestLoadResetsStreamState(t *testing.T) {
	engine := NewEngine(nil)

	engine.Load("/music/a.mp3")
	engine.SetDuration(3 * time.Minute)
	engine.SetPosition(time.Minute)
	require.NoError(t, engine.Play())

	engine.Load("/music/b.mp3")

	assert.False(t, engine.Playing())
	assert.Zero(t, engine.Position())
	assert.Zero(t, engine.Duration())
}

func TestPlayPauseStop(t *testing.T) {
	engine := NewEngine(nil)
	engine.Load("/music/a.mp3")
	engine.SetDuration(3 * time.Minute)

	require.NoError(t, engine.Play())
	assert.True(t, engine.Playing())

	require.NoError(t, engine.Pause())
	assert.False(t, engine.Playing())

	require.NoError(t, engine.Play())
	engine.SetPosition(time.Minute)
	require.NoError(t, engine.Stop())
	assert.False(t, engine.Playing())
	assert.Zero(t, engine.Position())

	assert.Equal(t, 2, engine.PlayCalls())
	assert.Equal(t, 1, engine.PauseCalls())
	assert.Equal(t, 1, engine.StopCalls())
}

func TestPlayFailurePublishesFailedEvent(t *testing.T) {
	bus := eventbus.NewSync(nil)
	defer func() { _ = bus.Close() }()

	var failed *domain.EngineFailedEvent
	bus.Subscribe(domain.EventEngineFailed, func(event domain.Event) {
		e := event.(domain.EngineFailedEvent)
		failed = &e
	})

	engine := NewEngine(bus)
	gen := engine.Load("/music/a.mp3")
	playErr := errors.New("device busy")
	engine.SetFailPlay(playErr)

	err := engine.Play()

	require.ErrorIs(t, err, playErr)
	require.NotNil(t, failed)
	assert.Equal(t, gen, failed.Generation)
	assert.Equal(t, "play", failed.Op)
}

func TestSeekClampsToDuration(t *testing.T) {
	engine := NewEngine(nil)
	engine.Load("/music/a.mp3")
	engine.SetDuration(2 * time.Minute)

	require.NoError(t, engine.Seek(5*time.Minute))
	assert.Equal(t, 2*time.Minute, engine.Position())

	require.NoError(t, engine.Seek(-time.Second))
	assert.Zero(t, engine.Position())
}

func TestSeekWithoutDurationIsNoOp(t *testing.T) {
	engine := NewEngine(nil)
	engine.Load("/music/a.mp3")

	require.NoError(t, engine.Seek(time.Minute))
	assert.Zero(t, engine.Position())
	assert.Equal(t, []time.Duration{time.Minute}, engine.SeekCalls())
}

func TestSetVolumeAndRateClamp(t *testing.T) {
	engine := NewEngine(nil)

	engine.SetVolume(1.5)
	assert.Equal(t, 1.0, engine.Volume())

	engine.SetVolume(-0.2)
	assert.Equal(t, 0.0, engine.Volume())

	engine.SetRate(10)
	assert.Equal(t, 4.0, engine.Rate())

	engine.SetRate(0.1)
	assert.Equal(t, 0.25, engine.Rate())
}

func TestEmitMetadataAdoptsDurationForCurrentGeneration(t *testing.T) {
	bus := eventbus.NewSync(nil)
	defer func() { _ = bus.Close() }()

	var events []domain.EngineMetadataEvent
	bus.Subscribe(domain.EventEngineMetadata, func(event domain.Event) {
		events = append(events, event.(domain.EngineMetadataEvent))
	})

	engine := NewEngine(bus)
	stale := engine.Load("/music/a.mp3")
	current := engine.Load("/music/b.mp3")

	engine.EmitMetadata(stale, time.Minute)
	assert.Zero(t, engine.Duration(), "stale metadata must not change the stream")

	engine.EmitMetadata(current, 3*time.Minute)
	assert.Equal(t, 3*time.Minute, engine.Duration())

	require.Len(t, events, 2)
	assert.Equal(t, stale, events[0].Generation)
	assert.Equal(t, current, events[1].Generation)
}

func TestEmitEndedStopsCurrentGenerationOnly(t *testing.T) {
	engine := NewEngine(eventbus.NewSync(nil))
	stale := engine.Load("/music/a.mp3")
	engine.Load("/music/b.mp3")
	require.NoError(t, engine.Play())

	engine.EmitEnded(stale)
	assert.True(t, engine.Playing())

	engine.EmitEnded(engine.Generation())
	assert.False(t, engine.Playing())
}

func TestClose(t *testing.T) {
	engine := NewEngine(nil)

	require.NoError(t, engine.Close())
	assert.True(t, engine.Closed())
}
