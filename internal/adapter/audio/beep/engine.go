// Package beep implements the PlaybackEngine on the beep/speaker
// stack. It decodes mp3, wav, flac and ogg files and renders them on
// the default output device.
package beep

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

const progressInterval = 500 * time.Millisecond

// Engine renders one stream at a time through the speaker package.
// Loads decode asynchronously; outcomes arrive as engine events on the
// bus, stamped with the generation of the load they belong to. The
// stream graph is streamer -> ctrl -> resampler -> volume.
type Engine struct {
	bus    ports.EventBus
	logger *slog.Logger

	mu         sync.Mutex
	generation domain.Generation
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	resampler  *beep.Resampler
	volume     *effects.Volume
	sampleRate beep.SampleRate
	duration   time.Duration
	playing    bool

	// desired transport settings, applied to every new stream
	wantVolume float64
	wantRate   float64

	done   chan struct{}
	closed bool
}

// NewEngine creates an engine publishing on the given bus and starts
// its progress loop.
func NewEngine(bus ports.EventBus, logger *slog.Logger) *Engine {
	e := &Engine{
		bus:        bus,
		logger:     logger,
		wantVolume: 1,
		wantRate:   1,
		done:       make(chan struct{}),
	}
	go e.progressLoop()
	return e
}

// SupportedFormats returns the decodable file extensions.
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac", ".ogg"}
}

// IsSupported reports whether the engine can decode the given file.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedFormats() {
		if ext == supported {
			return true
		}
	}
	return false
}

// Load releases the current stream and decodes the locator in the
// background. The returned generation identifies this load in later
// events; a newer Load supersedes it.
func (e *Engine) Load(locator string) domain.Generation {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.releaseLocked()
	e.mu.Unlock()

	go e.decode(gen, locator)
	return gen
}

// decode opens and decodes the source, then installs it if the
// generation is still current.
func (e *Engine) decode(gen domain.Generation, locator string) {
	path := strings.TrimPrefix(locator, "file://")

	streamer, format, err := open(path)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("load failed",
				slog.String("locator", locator),
				slog.Any("error", err))
		}
		e.bus.Publish(domain.NewEngineFailedEvent(gen, "load", err))
		return
	}

	e.mu.Lock()
	if gen != e.generation || e.closed {
		e.mu.Unlock()
		_ = streamer.Close()
		return
	}

	duration := format.SampleRate.D(streamer.Len())
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: true}
	resampler := beep.ResampleRatio(4, e.wantRate, ctrl)
	volume := &effects.Volume{
		Streamer: resampler,
		Base:     2,
		Volume:   math.Log2(math.Max(e.wantVolume, 1e-4)),
		Silent:   e.wantVolume == 0,
	}

	e.streamer = streamer
	e.ctrl = ctrl
	e.resampler = resampler
	e.volume = volume
	e.sampleRate = format.SampleRate
	e.duration = duration
	e.playing = false
	e.mu.Unlock()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		e.bus.Publish(domain.NewEngineFailedEvent(gen, "load",
			domain.NewEngineError("load", locator, "speaker init failed", err)))
		return
	}
	// The callback fires on the speaker goroutine with its lock held;
	// publishing there directly could deadlock a handler that calls
	// back into the engine.
	speaker.Play(beep.Seq(volume, beep.Callback(func() {
		go e.streamEnded(gen)
	})))

	e.bus.Publish(domain.NewEngineMetadataEvent(gen, duration))
}

func open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	if !IsSupported(path) {
		return nil, beep.Format{}, domain.NewEngineError("load", path, "cannot decode",
			fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path)))
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, beep.Format{}, domain.NewEngineError("load", path, "cannot open", err)
	}

	streamer, format, err := decodeByExt(file, path)
	if err != nil {
		_ = file.Close()
		return nil, beep.Format{}, domain.NewEngineError("load", path, "cannot decode", err)
	}
	return streamer, format, nil
}

func decodeByExt(r io.ReadSeekCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	case ".ogg":
		return vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (e *Engine) streamEnded(gen domain.Generation) {
	e.mu.Lock()
	if gen != e.generation || e.closed {
		e.mu.Unlock()
		return
	}
	e.playing = false
	e.mu.Unlock()

	e.bus.Publish(domain.NewEngineEndedEvent(gen))
}

// Play resumes rendering of the loaded stream.
func (e *Engine) Play() error {
	e.mu.Lock()
	ctrl := e.ctrl
	gen := e.generation
	if ctrl != nil {
		e.playing = true
	}
	e.mu.Unlock()

	if ctrl == nil {
		err := domain.NewEngineError("play", "", "no stream loaded", domain.ErrNoTrackLoaded)
		e.bus.Publish(domain.NewEngineFailedEvent(gen, "play", err))
		return err
	}

	speaker.Lock()
	ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause suspends rendering, keeping the position.
func (e *Engine) Pause() error {
	e.mu.Lock()
	ctrl := e.ctrl
	e.playing = false
	e.mu.Unlock()

	if ctrl == nil {
		return domain.NewEngineError("pause", "", "no stream loaded", domain.ErrNoTrackLoaded)
	}

	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()
	return nil
}

// Stop suspends rendering and rewinds to the start.
func (e *Engine) Stop() error {
	e.mu.Lock()
	ctrl := e.ctrl
	streamer := e.streamer
	e.playing = false
	e.mu.Unlock()

	if ctrl == nil {
		return domain.NewEngineError("stop", "", "no stream loaded", domain.ErrNoTrackLoaded)
	}

	speaker.Lock()
	ctrl.Paused = true
	err := streamer.Seek(0)
	speaker.Unlock()

	if err != nil {
		return domain.NewEngineError("stop", "", "rewind failed", err)
	}
	return nil
}

// Seek moves to the given position, clamped to the stream bounds.
// Without a decoded duration it is a no-op.
func (e *Engine) Seek(position time.Duration) error {
	e.mu.Lock()
	streamer := e.streamer
	sampleRate := e.sampleRate
	duration := e.duration
	e.mu.Unlock()

	if streamer == nil || duration == 0 {
		return nil
	}
	if position < 0 {
		position = 0
	}
	if position > duration {
		position = duration
	}

	speaker.Lock()
	err := streamer.Seek(sampleRate.N(position))
	speaker.Unlock()

	if err != nil {
		return domain.NewEngineError("seek", "", "seek failed", err)
	}
	return nil
}

// SetVolume applies the clamped volume to the current stream and
// remembers it for future loads. Zero mutes through the Silent flag
// since a log scale has no true zero.
func (e *Engine) SetVolume(v float64) {
	v = domain.ClampVolume(v)

	e.mu.Lock()
	e.wantVolume = v
	volume := e.volume
	e.mu.Unlock()

	if volume == nil {
		return
	}
	speaker.Lock()
	volume.Volume = math.Log2(math.Max(v, 1e-4))
	volume.Silent = v == 0
	speaker.Unlock()
}

// SetRate applies the clamped playback rate to the current stream and
// remembers it for future loads.
func (e *Engine) SetRate(rate float64) {
	rate = domain.ClampRate(rate)

	e.mu.Lock()
	e.wantRate = rate
	resampler := e.resampler
	e.mu.Unlock()

	if resampler == nil {
		return
	}
	speaker.Lock()
	resampler.SetRatio(rate)
	speaker.Unlock()
}

// Position returns the current stream position.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	streamer := e.streamer
	sampleRate := e.sampleRate
	e.mu.Unlock()

	if streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := streamer.Position()
	speaker.Unlock()
	return sampleRate.D(pos)
}

// Duration returns the decoded stream duration.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// Close releases the stream, the output device and the progress loop.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.releaseLocked()
	e.mu.Unlock()
	return nil
}

// releaseLocked clears the speaker and drops the current stream.
// Callers hold e.mu.
func (e *Engine) releaseLocked() {
	if e.streamer == nil {
		return
	}
	speaker.Clear()
	_ = e.streamer.Close()
	e.streamer = nil
	e.ctrl = nil
	e.resampler = nil
	e.volume = nil
	e.duration = 0
	e.playing = false
}

// progressLoop publishes position updates while the stream renders.
func (e *Engine) progressLoop() {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.mu.Lock()
			if !e.playing || e.streamer == nil {
				e.mu.Unlock()
				continue
			}
			gen := e.generation
			streamer := e.streamer
			sampleRate := e.sampleRate
			duration := e.duration
			e.mu.Unlock()

			speaker.Lock()
			pos := streamer.Position()
			speaker.Unlock()

			e.bus.Publish(domain.NewEngineProgressEvent(gen, sampleRate.D(pos), duration))
		}
	}
}

var _ ports.PlaybackEngine = (*Engine)(nil)
