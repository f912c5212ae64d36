// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	beepengine "github.com/auralplayer/aural/internal/adapter/audio/beep"
	audiomock "github.com/auralplayer/aural/internal/adapter/audio/mock"
	"github.com/auralplayer/aural/internal/adapter/eventbus"
	"github.com/auralplayer/aural/internal/adapter/mediacontrol/mpris"
	"github.com/auralplayer/aural/internal/adapter/repository/file"
	"github.com/auralplayer/aural/internal/adapter/repository/memory"
	"github.com/auralplayer/aural/internal/config"
	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/logger"
	"github.com/auralplayer/aural/internal/ports"
	"github.com/auralplayer/aural/internal/queue"
	"github.com/auralplayer/aural/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	logger *slog.Logger
	cfg    config.Config

	// Infrastructure
	bus     *eventbus.SyncBus
	engine  ports.PlaybackEngine
	watcher *file.Watcher

	// Repositories
	trackRepo    ports.TrackRepository
	playlistRepo ports.PlaylistRepository
	settingsRepo ports.SettingsRepository

	// Services
	settingsService *service.SettingsService
	playerService   *service.PlayerService
	playlistService *service.PlaylistService
	libraryService  *service.LibraryService
	controlService  *service.ControlService
	mediaSession    ports.MediaSession

	subscriptions []domain.SubscriptionID
	shutdown      sync.Once
}

// New creates the application with all dependencies wired. A non-empty
// data directory selects the file-backed repositories; otherwise
// everything lives in memory for the session.
func New(cfg config.Config) (*Application, error) {
	a := &Application{cfg: cfg}

	a.logger = logger.NewLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: "text",
	})
	a.logger.Info("initializing",
		slog.String("version", GetVersionInfo().Version),
		slog.String("engine", cfg.Engine))

	a.bus = eventbus.NewSync(a.logger.With(slog.String("component", "eventbus")))

	if err := a.initRepositories(); err != nil {
		return nil, err
	}

	settingsService, err := service.NewSettingsService(
		a.logger.With(slog.String("service", "settings")),
		a.settingsRepo,
		a.bus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	a.settingsService = settingsService

	switch cfg.Engine {
	case config.EngineMock:
		a.engine = audiomock.NewEngine(a.bus)
	default:
		a.engine = beepengine.NewEngine(a.bus, a.logger.With(slog.String("engine", "beep")))
	}

	a.playerService = service.NewPlayerService(
		a.logger.With(slog.String("service", "player")),
		a.engine,
		a.trackRepo,
		a.bus,
		queue.NewTraversal(),
	)
	a.playerService.ApplySettings(a.settingsService.Get())

	a.playlistService = service.NewPlaylistService(
		a.logger.With(slog.String("service", "playlist")),
		a.playlistRepo,
		a.trackRepo,
		a.bus,
	)

	a.libraryService = service.NewLibraryService(
		a.logger.With(slog.String("service", "library")),
		a.trackRepo,
		beepengine.NewMetadataReader(),
		a.bus,
	)

	if cfg.MediaControl {
		a.initMediaControl()
	}

	// The default playlist mirrors the collection; rebuild it whenever
	// the library changes.
	a.subscriptions = append(a.subscriptions,
		a.bus.Subscribe(domain.EventLibraryChanged, func(domain.Event) {
			if _, err := a.playlistService.EnsureDefault(); err != nil {
				a.logger.Warn("refreshing default playlist failed", slog.Any("error", err))
			}
		}),
	)

	if err := a.loadInitialQueue(); err != nil {
		a.logger.Warn("loading initial queue failed", slog.Any("error", err))
	}

	return a, nil
}

func (a *Application) initRepositories() error {
	if a.cfg.DataDir == "" {
		a.trackRepo = memory.NewTrackRepository()
		a.playlistRepo = memory.NewPlaylistRepository()
		a.settingsRepo = memory.NewSettingsRepository()
		return nil
	}

	tracks, err := file.NewTrackRepository(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open track store: %w", err)
	}
	playlists, err := file.NewPlaylistRepository(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open playlist store: %w", err)
	}
	a.trackRepo = tracks
	a.playlistRepo = playlists
	a.settingsRepo = file.NewSettingsRepository(a.cfg.DataDir)

	watcher, err := file.NewWatcher(a.cfg.DataDir, a.bus,
		a.logger.With(slog.String("component", "watcher")))
	if err != nil {
		a.logger.Warn("library watcher unavailable", slog.Any("error", err))
		return nil
	}
	a.watcher = watcher
	return nil
}

// initMediaControl attaches the OS media-control bridge when the
// platform offers a surface. Running without one is normal.
func (a *Application) initMediaControl() {
	if !mpris.Available() {
		a.logger.Info("no media control surface available")
		return
	}

	session, err := mpris.NewSession(a.logger.With(slog.String("component", "mpris")))
	if err != nil {
		a.logger.Warn("media control session failed", slog.Any("error", err))
		return
	}

	control, err := service.NewControlService(
		a.logger.With(slog.String("service", "control")),
		session,
		a.playerService,
		a.bus,
	)
	if err != nil {
		a.logger.Warn("media control bridge failed", slog.Any("error", err))
		_ = session.Close()
		return
	}

	a.mediaSession = session
	a.controlService = control
}

// loadInitialQueue fills the player queue from the default playlist.
func (a *Application) loadInitialQueue() error {
	def, err := a.playlistService.EnsureDefault()
	if err != nil {
		return err
	}
	tracks, err := a.playlistService.ResolveTracks(def.ID)
	if err != nil {
		return err
	}
	a.playerService.SetQueue(tracks, -1)
	return nil
}

// Run performs the startup scan if one is configured and then blocks
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("started")

	if a.cfg.MusicDir != "" {
		go func() {
			tracks, err := a.libraryService.ScanFolder(a.cfg.MusicDir)
			if err != nil {
				a.logger.Warn("startup scan failed",
					slog.String("dir", a.cfg.MusicDir),
					slog.Any("error", err))
				return
			}
			a.logger.Info("startup scan finished", slog.Int("tracks", len(tracks)))
		}()
	}

	<-ctx.Done()
	return nil
}

// Shutdown gracefully shuts down the application. Safe to call more
// than once.
func (a *Application) Shutdown() {
	a.shutdown.Do(func() {
		a.logger.Info("shutting down")

		for _, id := range a.subscriptions {
			a.bus.Unsubscribe(id)
		}

		if a.controlService != nil {
			if err := a.controlService.Close(); err != nil {
				a.logger.Warn("failed to close control bridge", slog.Any("error", err))
			}
		}
		if a.mediaSession != nil {
			if err := a.mediaSession.Close(); err != nil {
				a.logger.Warn("failed to close media session", slog.Any("error", err))
			}
		}

		if err := a.libraryService.Close(); err != nil {
			a.logger.Warn("failed to close library service", slog.Any("error", err))
		}
		if err := a.playlistService.Close(); err != nil {
			a.logger.Warn("failed to close playlist service", slog.Any("error", err))
		}
		if err := a.playerService.Close(); err != nil {
			a.logger.Warn("failed to close player service", slog.Any("error", err))
		}
		if err := a.settingsService.Close(); err != nil {
			a.logger.Warn("failed to close settings service", slog.Any("error", err))
		}

		if err := a.engine.Close(); err != nil {
			a.logger.Warn("failed to close audio engine", slog.Any("error", err))
		}
		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				a.logger.Warn("failed to close library watcher", slog.Any("error", err))
			}
		}
		if err := a.bus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}

		a.logger.Info("shutdown complete")
	})
}

// Player returns the player service.
func (a *Application) Player() *service.PlayerService { return a.playerService }

// Library returns the library service.
func (a *Application) Library() *service.LibraryService { return a.libraryService }

// Playlists returns the playlist service.
func (a *Application) Playlists() *service.PlaylistService { return a.playlistService }

// Settings returns the settings service.
func (a *Application) Settings() *service.SettingsService { return a.settingsService }

// Bus returns the event bus.
func (a *Application) Bus() ports.EventBus { return a.bus }
