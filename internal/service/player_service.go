// Package service contains the application services of the Aural
// player.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
	"github.com/auralplayer/aural/internal/queue"
)

// PlayerService is the single authoritative record of playback intent.
// It owns the working queue, reconciles the playback engine with every
// intent change and folds engine events back into its state. All
// state is guarded by a RWMutex; engine calls and event publication
// happen outside the lock, since the sync bus delivers handlers on the
// publishing goroutine.
//
// Every externally visible change ends with a PlayerStateEvent built
// from the freshest state, so outward mirrors never observe a stale
// intermediate.
type PlayerService struct {
	logger    *slog.Logger
	engine    ports.PlaybackEngine
	tracks    ports.TrackRepository
	bus       ports.EventBus
	traversal *queue.Traversal

	mu            sync.RWMutex
	queue         []domain.Track
	currentIndex  int
	current       *domain.Track
	status        domain.PlaybackStatus
	position      time.Duration
	duration      time.Duration
	volume        float64
	rate          float64
	repeat        domain.RepeatMode
	shuffle       bool
	generation    domain.Generation
	lastErr       error
	playRequested bool

	subscriptions []domain.SubscriptionID
}

// NewPlayerService creates the player and subscribes it to engine and
// library events.
func NewPlayerService(
	logger *slog.Logger,
	engine ports.PlaybackEngine,
	tracks ports.TrackRepository,
	bus ports.EventBus,
	traversal *queue.Traversal,
) *PlayerService {
	s := &PlayerService{
		logger:       logger,
		engine:       engine,
		tracks:       tracks,
		bus:          bus,
		traversal:    traversal,
		currentIndex: -1,
		status:       domain.StatusStopped,
		volume:       0.8,
		rate:         1.0,
		repeat:       domain.RepeatNone,
	}

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(domain.EventEngineMetadata, s.handleEngineMetadata),
		bus.Subscribe(domain.EventEngineProgress, s.handleEngineProgress),
		bus.Subscribe(domain.EventEngineEnded, s.handleEngineEnded),
		bus.Subscribe(domain.EventEngineFailed, s.handleEngineFailed),
		bus.Subscribe(domain.EventTrackDeleted, s.handleTrackDeleted),
	)

	logger.Debug("player service initialized")
	return s
}

// ApplySettings restores the persisted transport preferences. Called
// once at startup before any playback.
func (s *PlayerService) ApplySettings(settings domain.Settings) {
	s.mu.Lock()
	s.volume = domain.ClampVolume(settings.Volume)
	s.rate = domain.ClampRate(settings.Rate)
	if settings.Repeat.Valid() {
		s.repeat = settings.Repeat
	}
	s.shuffle = settings.Shuffle
	volume, rate := s.volume, s.rate
	s.mu.Unlock()

	s.engine.SetVolume(volume)
	s.engine.SetRate(rate)
	s.publishState()
}

// SetQueue replaces the working queue. A start index inside the new
// queue becomes the current index; the loaded track, if any, keeps
// playing until a track is explicitly started.
func (s *PlayerService) SetQueue(tracks []domain.Track, start int) {
	s.mu.Lock()
	s.queue = make([]domain.Track, len(tracks))
	copy(s.queue, tracks)
	if start >= 0 && start < len(s.queue) {
		s.currentIndex = start
	} else if s.current == nil {
		s.currentIndex = -1
	} else if s.currentIndex >= len(s.queue) {
		s.currentIndex = -1
	}
	queueCopy := s.snapshotQueueLocked()
	index := s.currentIndex
	s.mu.Unlock()

	s.bus.Publish(domain.NewQueueChangedEvent(queueCopy, index))
	s.publishState()
}

// PlayTrackAt loads and starts the queue entry at index.
func (s *PlayerService) PlayTrackAt(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return domain.ErrInvalidIndex
	}
	locator := s.prepareStartLocked(index)
	s.mu.Unlock()

	s.startLoad(locator)
	s.publishState()
	return nil
}

// prepareStartLocked assigns queue[index] as the current track,
// increments its play count and moves the player to Loading. It
// returns the locator to load. Callers hold the write lock.
func (s *PlayerService) prepareStartLocked(index int) string {
	track := s.queue[index]
	track.PlayCount++
	s.queue[index] = track

	s.current = &track
	s.currentIndex = index
	s.status = domain.StatusLoading
	s.position = 0
	s.duration = track.Duration
	s.lastErr = nil
	s.playRequested = true

	if err := s.tracks.Put(&track); err != nil {
		s.logger.Warn("persisting play count failed",
			slog.String("track_id", track.ID),
			slog.Any("error", err))
	}
	return track.SourceURL
}

// startLoad hands the locator to the engine and records the assigned
// generation. Runs without the lock; the engine may publish
// synchronously.
func (s *PlayerService) startLoad(locator string) {
	gen := s.engine.Load(locator)

	s.mu.Lock()
	if gen > s.generation {
		s.generation = gen
	}
	s.mu.Unlock()
}

// Play starts or resumes playback of the current track.
func (s *PlayerService) Play() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}
	if s.status == domain.StatusLoading {
		// The stream is still decoding; metadata arrival starts it.
		s.playRequested = true
		s.mu.Unlock()
		return nil
	}
	s.playRequested = true
	s.mu.Unlock()

	if err := s.engine.Play(); err != nil {
		// The failed event reconciles the state.
		return err
	}

	s.mu.Lock()
	s.status = domain.StatusPlaying
	s.mu.Unlock()

	s.publishState()
	return nil
}

// Pause suspends playback, keeping the position.
func (s *PlayerService) Pause() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}
	s.playRequested = false
	s.mu.Unlock()

	if err := s.engine.Pause(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.status == domain.StatusPlaying || s.status == domain.StatusReady {
		s.status = domain.StatusPaused
	}
	s.mu.Unlock()

	s.publishState()
	return nil
}

// TogglePlay pauses when playing, otherwise plays.
func (s *PlayerService) TogglePlay() error {
	s.mu.RLock()
	playing := s.status == domain.StatusPlaying
	s.mu.RUnlock()

	if playing {
		return s.Pause()
	}
	return s.Play()
}

// Stop halts playback and rewinds. The current track and the queue
// survive a stop; only the transport resets.
func (s *PlayerService) Stop() error {
	s.mu.Lock()
	hasTrack := s.current != nil
	s.playRequested = false
	s.mu.Unlock()

	if hasTrack {
		if err := s.engine.Stop(); err != nil {
			s.logger.Warn("engine stop failed", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	s.status = domain.StatusStopped
	s.position = 0
	s.mu.Unlock()

	s.publishState()
	return nil
}

// Next advances per the traversal modes. At the end of the queue
// without repeat-all the player stops instead of wrapping.
func (s *PlayerService) Next() error {
	return s.navigate(func(length, current int, shuffle bool, repeat domain.RepeatMode) (int, bool) {
		return s.traversal.Next(length, current, shuffle, repeat)
	})
}

// Previous retreats per the traversal modes.
func (s *PlayerService) Previous() error {
	return s.navigate(func(length, current int, shuffle bool, repeat domain.RepeatMode) (int, bool) {
		return s.traversal.Previous(length, current, shuffle, repeat)
	})
}

func (s *PlayerService) navigate(step func(int, int, bool, domain.RepeatMode) (int, bool)) error {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return domain.ErrQueueEmpty
	}
	next, ok := step(len(s.queue), s.currentIndex, s.shuffle, s.repeat)
	if !ok {
		s.mu.Unlock()
		return s.Stop()
	}
	locator := s.prepareStartLocked(next)
	s.mu.Unlock()

	s.startLoad(locator)
	s.publishState()
	return nil
}

// Seek moves within the current track. The position is applied
// optimistically, clamped to [0, duration].
func (s *PlayerService) Seek(position time.Duration) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}
	if position < 0 {
		position = 0
	}
	if s.duration > 0 && position > s.duration {
		position = s.duration
	}
	s.position = position
	s.mu.Unlock()

	if err := s.engine.Seek(position); err != nil {
		return err
	}

	s.publishState()
	return nil
}

// SetVolume clamps and applies the volume. Out-of-range input is never
// an error.
func (s *PlayerService) SetVolume(volume float64) {
	volume = domain.ClampVolume(volume)

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	s.engine.SetVolume(volume)
	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	s.publishState()
}

// SetRate clamps and applies the playback rate.
func (s *PlayerService) SetRate(rate float64) {
	rate = domain.ClampRate(rate)

	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()

	s.engine.SetRate(rate)
	s.bus.Publish(domain.NewRateChangedEvent(rate))
	s.publishState()
}

// SetRepeatMode sets the repeat mode. Unknown modes are rejected.
func (s *PlayerService) SetRepeatMode(mode domain.RepeatMode) error {
	if !mode.Valid() {
		return domain.NewValidationError("repeatMode", string(mode), "unknown repeat mode")
	}

	s.mu.Lock()
	s.repeat = mode
	shuffle := s.shuffle
	s.mu.Unlock()

	s.bus.Publish(domain.NewModeChangedEvent(mode, shuffle))
	s.publishState()
	return nil
}

// SetShuffle toggles shuffle traversal.
func (s *PlayerService) SetShuffle(shuffle bool) {
	s.mu.Lock()
	s.shuffle = shuffle
	repeat := s.repeat
	s.mu.Unlock()

	s.bus.Publish(domain.NewModeChangedEvent(repeat, shuffle))
	s.publishState()
}

// RemoveTrack removes every queue entry for the track id. If the track
// is currently loaded, playback stops and the current track clears.
func (s *PlayerService) RemoveTrack(trackID string) {
	s.mu.Lock()
	removedCurrent := s.current != nil && s.current.ID == trackID

	filtered := s.queue[:0]
	newIndex := s.currentIndex
	for i, track := range s.queue {
		if track.ID == trackID {
			if i < s.currentIndex {
				newIndex--
			}
			continue
		}
		filtered = append(filtered, track)
	}
	s.queue = filtered

	if removedCurrent {
		s.current = nil
		s.currentIndex = -1
		s.status = domain.StatusStopped
		s.position = 0
		s.duration = 0
		s.playRequested = false
	} else if newIndex >= len(s.queue) {
		s.currentIndex = -1
	} else {
		s.currentIndex = newIndex
	}
	queueCopy := s.snapshotQueueLocked()
	index := s.currentIndex
	s.mu.Unlock()

	if removedCurrent {
		if err := s.engine.Stop(); err != nil {
			s.logger.Debug("engine stop after delete failed", slog.Any("error", err))
		}
	}

	s.bus.Publish(domain.NewQueueChangedEvent(queueCopy, index))
	s.publishState()
}

// Snapshot returns a point-in-time copy of the player state.
func (s *PlayerService) Snapshot() domain.PlayerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Close releases the event subscriptions. The engine is closed by its
// owner.
func (s *PlayerService) Close() error {
	for _, id := range s.subscriptions {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func (s *PlayerService) handleEngineMetadata(event domain.Event) {
	e, ok := event.(domain.EngineMetadataEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if e.Generation < s.generation {
		s.mu.Unlock()
		return
	}
	s.generation = e.Generation
	s.duration = e.Duration
	var persist *domain.Track
	if s.current != nil {
		s.current.Duration = e.Duration
		if s.currentIndex >= 0 && s.currentIndex < len(s.queue) {
			s.queue[s.currentIndex].Duration = e.Duration
		}
		copied := *s.current
		persist = &copied
	}
	start := s.playRequested
	if !start {
		s.status = domain.StatusReady
	}
	s.mu.Unlock()

	if persist != nil {
		if err := s.tracks.Put(persist); err != nil {
			s.logger.Debug("persisting duration failed", slog.Any("error", err))
		}
	}

	if start {
		if err := s.engine.Play(); err == nil {
			s.mu.Lock()
			s.status = domain.StatusPlaying
			s.mu.Unlock()
		}
	}

	s.publishState()
}

func (s *PlayerService) handleEngineProgress(event domain.Event) {
	e, ok := event.(domain.EngineProgressEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if e.Generation < s.generation {
		s.mu.Unlock()
		return
	}
	s.position = e.Position
	if e.Duration > 0 {
		s.duration = e.Duration
	}
	s.mu.Unlock()

	s.publishState()
}

func (s *PlayerService) handleEngineEnded(event domain.Event) {
	e, ok := event.(domain.EngineEndedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if e.Generation < s.generation {
		s.mu.Unlock()
		return
	}
	s.status = domain.StatusEnded

	if s.repeat == domain.RepeatOne && s.currentIndex >= 0 && s.currentIndex < len(s.queue) {
		// Restart counts as a fresh load of the same track.
		locator := s.prepareStartLocked(s.currentIndex)
		s.mu.Unlock()
		s.startLoad(locator)
		s.publishState()
		return
	}

	next, ok := s.traversal.Next(len(s.queue), s.currentIndex, s.shuffle, s.repeat)
	if !ok {
		s.status = domain.StatusStopped
		s.position = 0
		s.playRequested = false
		s.mu.Unlock()
		s.publishState()
		return
	}
	locator := s.prepareStartLocked(next)
	s.mu.Unlock()

	s.startLoad(locator)
	s.publishState()
}

func (s *PlayerService) handleEngineFailed(event domain.Event) {
	e, ok := event.(domain.EngineFailedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if e.Generation < s.generation {
		s.mu.Unlock()
		return
	}
	s.generation = e.Generation
	s.status = domain.StatusFailed
	s.lastErr = e.Err
	s.playRequested = false
	var track *domain.Track
	if s.current != nil {
		copied := *s.current
		track = &copied
	}
	s.mu.Unlock()

	s.logger.Warn("playback failed",
		slog.String("op", e.Op),
		slog.Any("error", e.Err))

	s.bus.Publish(domain.NewPlayerErrorEvent(track, e.Err))
	s.publishState()
}

func (s *PlayerService) handleTrackDeleted(event domain.Event) {
	e, ok := event.(domain.TrackDeletedEvent)
	if !ok {
		return
	}
	s.RemoveTrack(e.TrackID)
}

// publishState publishes a snapshot of the current state. Never called
// with the lock held.
func (s *PlayerService) publishState() {
	s.mu.RLock()
	snapshot := s.snapshotLocked()
	s.mu.RUnlock()

	s.bus.Publish(domain.NewPlayerStateEvent(snapshot))
}

func (s *PlayerService) snapshotLocked() domain.PlayerSnapshot {
	var current *domain.Track
	if s.current != nil {
		copied := *s.current
		current = &copied
	}
	return domain.PlayerSnapshot{
		CurrentTrack: current,
		Queue:        s.snapshotQueueLocked(),
		CurrentIndex: s.currentIndex,
		Status:       s.status,
		Position:     s.position,
		Duration:     s.duration,
		Volume:       s.volume,
		Rate:         s.rate,
		Repeat:       s.repeat,
		Shuffle:      s.shuffle,
		Err:          s.lastErr,
	}
}

func (s *PlayerService) snapshotQueueLocked() []domain.Track {
	queueCopy := make([]domain.Track, len(s.queue))
	copy(queueCopy, s.queue)
	return queueCopy
}
