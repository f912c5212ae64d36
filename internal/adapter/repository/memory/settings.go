package memory

import (
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// SettingsRepository keeps the settings record in memory. An empty
// store loads defaults.
type SettingsRepository struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewSettingsRepository creates an empty settings repository.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Load returns the stored settings, or defaults when nothing was
// saved yet.
func (r *SettingsRepository) Load() (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	copied := *r.settings
	return &copied, nil
}

// Save stores the settings record.
func (r *SettingsRepository) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.NewValidationError("settings", "", "settings must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.settings = &copied
	return nil
}

var _ ports.SettingsRepository = (*SettingsRepository)(nil)
