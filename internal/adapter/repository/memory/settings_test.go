package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralplayer/aural/internal/domain"
)

func TestSettingsLoadEmptyReturnsDefaults(t *testing.T) {
	repo := NewSettingsRepository()

	settings, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
}

func TestSettingsSaveAndLoad(t *testing.T) {
	repo := NewSettingsRepository()

	saved := domain.DefaultSettings()
	saved.Volume = 0.3
	saved.Repeat = domain.RepeatAll
	require.NoError(t, repo.Save(&saved))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 0.3, loaded.Volume)
	assert.Equal(t, domain.RepeatAll, loaded.Repeat)
}

func TestSettingsSaveNil(t *testing.T) {
	repo := NewSettingsRepository()

	assert.Error(t, repo.Save(nil))
}

func TestSettingsLoadDoesNotAliasStore(t *testing.T) {
	repo := NewSettingsRepository()

	saved := domain.DefaultSettings()
	require.NoError(t, repo.Save(&saved))

	loaded, err := repo.Load()
	require.NoError(t, err)
	loaded.Volume = 0

	again, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().Volume, again.Volume)
}
