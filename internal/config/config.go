// Package config loads the application configuration from a YAML file
// with environment overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engine names selectable in the configuration.
const (
	EngineBeep = "beep"
	EngineMock = "mock"
)

// Config contains the program configuration.
type Config struct {
	// DataDir is where tracks, playlists and settings are persisted.
	// Empty keeps everything in memory.
	DataDir string `yaml:"data_dir"`

	// MusicDir is the folder scanned for audio files on startup when
	// set.
	MusicDir string `yaml:"music_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Engine selects the playback engine, "beep" or "mock".
	Engine string `yaml:"engine"`

	// MediaControl enables the OS media-control bridge when the
	// platform offers a surface.
	MediaControl bool `yaml:"media_control"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:      filepath.Join(homeDir(), ".local", "share", "aural"),
		LogLevel:     "info",
		Engine:       EngineBeep,
		MediaControl: true,
	}
}

// Load reads the configuration from path, falling back to standard
// locations when path is empty and to defaults when no file exists.
// Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.MusicDir = expandHome(cfg.MusicDir)

	if cfg.Engine != EngineBeep && cfg.Engine != EngineMock {
		return cfg, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AURAL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("AURAL_MUSIC_DIR"); v != "" {
		cfg.MusicDir = v
	}
	if v := os.Getenv("AURAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AURAL_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("AURAL_MEDIA_CONTROL"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MediaControl = enabled
		}
	}
}

func findConfigFile() string {
	locations := []string{
		"./aural.yaml",
		"./aural.yml",
		filepath.Join(homeDir(), ".config", "aural", "config.yaml"),
		filepath.Join(homeDir(), ".config", "aural", "config.yml"),
	}
	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
