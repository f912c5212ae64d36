// Package mock provides an in-memory PlaybackEngine for tests. It
// simulates playback state without an audio device and lets tests
// inject engine events at chosen generations.
package mock

import (
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// Engine is a mock playback engine. Loads succeed silently; the test
// drives the event side of the contract through the Emit methods so
// that supersession and stale-generation handling can be exercised
// deterministically.
type Engine struct {
	bus ports.EventBus

	mu         sync.Mutex
	generation domain.Generation
	locator    string
	playing    bool
	position   time.Duration
	duration   time.Duration
	volume     float64
	rate       float64
	closed     bool

	failPlay error

	loadCalls  []string
	playCalls  int
	pauseCalls int
	stopCalls  int
	seekCalls  []time.Duration
}

// NewEngine creates a mock engine publishing on the given bus.
func NewEngine(bus ports.EventBus) *Engine {
	return &Engine{bus: bus, volume: 1, rate: 1}
}

// SetFailPlay makes subsequent Play calls return err. Pass nil to
// restore success.
func (m *Engine) SetFailPlay(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = err
}

// SetDuration sets the simulated stream duration.
func (m *Engine) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// SetPosition sets the simulated playback position.
func (m *Engine) SetPosition(p time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
}

// Load records the locator and returns a fresh generation. No events
// are published; tests emit them explicitly.
func (m *Engine) Load(locator string) domain.Generation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.locator = locator
	m.playing = false
	m.position = 0
	m.duration = 0
	m.loadCalls = append(m.loadCalls, locator)
	return m.generation
}

// Play starts simulated playback, or returns the configured failure.
func (m *Engine) Play() error {
	m.mu.Lock()
	m.playCalls++
	if m.failPlay != nil {
		err := m.failPlay
		gen := m.generation
		bus := m.bus
		m.mu.Unlock()
		if bus != nil {
			bus.Publish(domain.NewEngineFailedEvent(gen, "play", err))
		}
		return err
	}
	m.playing = true
	m.mu.Unlock()
	return nil
}

// Pause suspends simulated playback.
func (m *Engine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.playing = false
	return nil
}

// Stop suspends playback and rewinds.
func (m *Engine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.playing = false
	m.position = 0
	return nil
}

// Seek clamps to [0, duration] and records the call. With unknown
// duration it is a no-op, matching the real engine.
func (m *Engine) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seekCalls = append(m.seekCalls, position)
	if m.duration == 0 {
		return nil
	}
	if position < 0 {
		position = 0
	}
	if position > m.duration {
		position = m.duration
	}
	m.position = position
	return nil
}

// SetVolume stores the clamped volume.
func (m *Engine) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = domain.ClampVolume(volume)
}

// SetRate stores the clamped rate.
func (m *Engine) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = domain.ClampRate(rate)
}

// Position returns the simulated position.
func (m *Engine) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Duration returns the simulated duration.
func (m *Engine) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// Close marks the engine closed.
func (m *Engine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// EmitMetadata publishes a metadata event for the given generation and
// adopts the duration when the generation is current.
func (m *Engine) EmitMetadata(gen domain.Generation, duration time.Duration) {
	m.mu.Lock()
	if gen == m.generation {
		m.duration = duration
	}
	bus := m.bus
	m.mu.Unlock()
	if bus != nil {
		bus.Publish(domain.NewEngineMetadataEvent(gen, duration))
	}
}

// EmitProgress publishes a progress event for the given generation.
func (m *Engine) EmitProgress(gen domain.Generation, position, duration time.Duration) {
	if m.bus != nil {
		m.bus.Publish(domain.NewEngineProgressEvent(gen, position, duration))
	}
}

// EmitEnded publishes a natural-end event for the given generation.
func (m *Engine) EmitEnded(gen domain.Generation) {
	m.mu.Lock()
	if gen == m.generation {
		m.playing = false
	}
	bus := m.bus
	m.mu.Unlock()
	if bus != nil {
		bus.Publish(domain.NewEngineEndedEvent(gen))
	}
}

// EmitFailed publishes a failure event for the given generation.
func (m *Engine) EmitFailed(gen domain.Generation, op string, err error) {
	if m.bus != nil {
		m.bus.Publish(domain.NewEngineFailedEvent(gen, op, err))
	}
}

// Generation returns the generation of the most recent load.
func (m *Engine) Generation() domain.Generation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Locator returns the most recently loaded locator.
func (m *Engine) Locator() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locator
}

// Playing reports whether the mock considers itself rendering.
func (m *Engine) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Closed reports whether Close was called.
func (m *Engine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Volume returns the last clamped volume applied.
func (m *Engine) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Rate returns the last clamped rate applied.
func (m *Engine) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// LoadCalls returns every locator passed to Load, in order.
func (m *Engine) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.loadCalls))
	copy(out, m.loadCalls)
	return out
}

// PlayCalls returns how many times Play was called.
func (m *Engine) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

// PauseCalls returns how many times Pause was called.
func (m *Engine) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

// StopCalls returns how many times Stop was called.
func (m *Engine) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

// SeekCalls returns every position passed to Seek, in order.
func (m *Engine) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seekCalls))
	copy(out, m.seekCalls)
	return out
}

var _ ports.PlaybackEngine = (*Engine)(nil)
