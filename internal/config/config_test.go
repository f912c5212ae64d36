package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, EngineBeep, cfg.Engine)
	assert.True(t, cfg.MediaControl)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aural.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"data_dir: /tmp/aural-data\nlog_level: debug\nengine: mock\nmedia_control: false\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/aural-data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, EngineMock, cfg.Engine)
	assert.False(t, cfg.MediaControl)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aural.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: beep\nlog_level: info\n"), 0o644))

	t.Setenv("AURAL_ENGINE", "mock")
	t.Setenv("AURAL_LOG_LEVEL", "warn")
	t.Setenv("AURAL_MEDIA_CONTROL", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineMock, cfg.Engine)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.MediaControl)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aural.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: gramophone\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gramophone")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Music"), expandHome("~/Music"))
	assert.Equal(t, "/absolute/path", expandHome("/absolute/path"))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aural.yaml")
	want := Config{DataDir: "/data", MusicDir: "/music", LogLevel: "debug", Engine: EngineMock}

	require.NoError(t, Save(want, path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "/music", cfg.MusicDir)
	assert.Equal(t, EngineMock, cfg.Engine)
}
