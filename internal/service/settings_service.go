package service

import (
	"log/slog"
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// SettingsService keeps the persisted user preferences in memory and
// writes them through to the repository. It listens for volume, rate
// and mode changes on the bus so player-side adjustments are saved
// without the player knowing about persistence. A failed write is
// reported and retried on the next change; the in-memory state stays
// authoritative.
type SettingsService struct {
	logger *slog.Logger
	repo   ports.SettingsRepository
	bus    ports.EventBus

	mu       sync.RWMutex
	settings domain.Settings

	subscriptions []domain.SubscriptionID
}

// NewSettingsService loads the persisted settings and starts tracking
// preference changes on the bus.
func NewSettingsService(
	logger *slog.Logger,
	repo ports.SettingsRepository,
	bus ports.EventBus,
) (*SettingsService, error) {
	loaded, err := repo.Load()
	if err != nil {
		return nil, err
	}

	s := &SettingsService{
		logger:   logger,
		repo:     repo,
		bus:      bus,
		settings: normalizeSettings(*loaded),
	}

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(domain.EventVolumeChanged, s.handleVolumeChanged),
		bus.Subscribe(domain.EventRateChanged, s.handleRateChanged),
		bus.Subscribe(domain.EventModeChanged, s.handleModeChanged),
	)
	return s, nil
}

// Get returns a copy of the current settings.
func (s *SettingsService) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySettings(s.settings)
}

// SetFilter saves the library filter preference.
func (s *SettingsService) SetFilter(spec domain.FilterSpec) {
	s.update(func(settings *domain.Settings) {
		settings.Filter = normalizeFilter(spec)
	})
}

// Close stops tracking preference changes.
func (s *SettingsService) Close() error {
	for _, id := range s.subscriptions {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func (s *SettingsService) handleVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	s.update(func(settings *domain.Settings) {
		settings.Volume = domain.ClampVolume(e.Volume)
	})
}

func (s *SettingsService) handleRateChanged(event domain.Event) {
	e, ok := event.(domain.RateChangedEvent)
	if !ok {
		return
	}
	s.update(func(settings *domain.Settings) {
		settings.Rate = domain.ClampRate(e.Rate)
	})
}

func (s *SettingsService) handleModeChanged(event domain.Event) {
	e, ok := event.(domain.ModeChangedEvent)
	if !ok {
		return
	}
	s.update(func(settings *domain.Settings) {
		if e.Repeat.Valid() {
			settings.Repeat = e.Repeat
		}
		settings.Shuffle = e.Shuffle
	})
}

// update mutates the in-memory settings and persists the result.
func (s *SettingsService) update(edit func(*domain.Settings)) {
	s.mu.Lock()
	edit(&s.settings)
	snapshot := copySettings(s.settings)
	s.mu.Unlock()

	if err := s.repo.Save(&snapshot); err != nil {
		s.logger.Warn("persisting settings failed", slog.Any("error", err))
	}
}

// normalizeSettings clamps loaded values into their valid ranges so a
// hand-edited or stale record cannot inject invalid state.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.SchemaVersion = domain.SettingsSchemaVersion
	settings.Volume = domain.ClampVolume(settings.Volume)
	settings.Rate = domain.ClampRate(settings.Rate)
	if !settings.Repeat.Valid() {
		settings.Repeat = domain.RepeatNone
	}
	settings.Filter = normalizeFilter(settings.Filter)
	return settings
}

func normalizeFilter(spec domain.FilterSpec) domain.FilterSpec {
	if spec.SortKey == "" {
		spec.SortKey = domain.SortByTitle
	}
	if spec.SortOrder == "" {
		spec.SortOrder = domain.SortAscending
	}
	return spec
}

func copySettings(settings domain.Settings) domain.Settings {
	if settings.Filter.Tags != nil {
		tags := make([]string, len(settings.Filter.Tags))
		copy(tags, settings.Filter.Tags)
		settings.Filter.Tags = tags
	}
	if settings.Filter.Genres != nil {
		genres := make([]string, len(settings.Filter.Genres))
		copy(genres, settings.Filter.Genres)
		settings.Filter.Genres = genres
	}
	return settings
}
