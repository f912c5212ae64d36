package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// SeekStep is the relative seek applied when the OS surface requests a
// skip without an explicit offset.
const SeekStep = 10 * time.Second

// artworkSizes are the nominal sizes published for the track artwork.
// Every entry references the same source image; the surface picks the
// best fit.
var artworkSizes = []int{96, 128, 192, 256, 384, 512}

// playerControls is the slice of the player the media bridge drives.
type playerControls interface {
	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	Seek(position time.Duration) error
	Snapshot() domain.PlayerSnapshot
}

// ControlService bridges the player to an OS media-control surface. It
// forwards player state outward as transport and now-playing updates
// and dispatches the surface's commands back to the player. The bridge
// is event-driven in both directions; it never polls.
//
// The bridge only exists when a session does. When the platform offers
// no surface the bridge is simply not constructed.
type ControlService struct {
	logger  *slog.Logger
	session ports.MediaSession
	player  playerControls
	bus     ports.EventBus

	mu           sync.Mutex
	lastTrackID  string
	lastDuration time.Duration

	subscriptions []domain.SubscriptionID
}

// NewControlService wires the session to the player and starts
// forwarding state. The session must not be nil.
func NewControlService(
	logger *slog.Logger,
	session ports.MediaSession,
	player playerControls,
	bus ports.EventBus,
) (*ControlService, error) {
	if session == nil {
		return nil, domain.NewValidationError("session", nil, "media session must not be nil")
	}

	s := &ControlService{
		logger:  logger,
		session: session,
		player:  player,
		bus:     bus,
	}

	session.SetCommands(ports.MediaCommands{
		OnPlay:     func() { s.command("play", s.player.Play) },
		OnPause:    func() { s.command("pause", s.player.Pause) },
		OnStop:     func() { s.command("stop", s.player.Stop) },
		OnNext:     func() { s.command("next", s.player.Next) },
		OnPrevious: func() { s.command("previous", s.player.Previous) },
		OnSeekBy:   s.seekBy,
		OnSeekTo:   s.seekTo,
	})

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(domain.EventPlayerState, s.handlePlayerState),
	)

	s.publish(player.Snapshot())
	return s, nil
}

// Close stops forwarding state. The session itself is closed by its
// owner.
func (s *ControlService) Close() error {
	for _, id := range s.subscriptions {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func (s *ControlService) handlePlayerState(event domain.Event) {
	e, ok := event.(domain.PlayerStateEvent)
	if !ok {
		return
	}
	s.publish(e.State)
}

// publish pushes the transport state on every update and the
// now-playing metadata only when the track or its duration changed.
func (s *ControlService) publish(state domain.PlayerSnapshot) {
	if err := s.session.PublishTransport(transportState(state.Status), state.Position); err != nil {
		s.logger.Warn("publishing transport state failed", slog.Any("error", err))
	}

	s.mu.Lock()
	trackID := ""
	if state.CurrentTrack != nil {
		trackID = state.CurrentTrack.ID
	}
	changed := trackID != s.lastTrackID || state.Duration != s.lastDuration
	s.lastTrackID = trackID
	s.lastDuration = state.Duration
	s.mu.Unlock()

	if !changed {
		return
	}

	var info ports.NowPlaying
	if state.CurrentTrack != nil {
		info = nowPlaying(*state.CurrentTrack, state.Duration)
	}
	if err := s.session.PublishNowPlaying(info); err != nil {
		s.logger.Warn("publishing now playing failed", slog.Any("error", err))
	}
}

func (s *ControlService) command(name string, run func() error) {
	if err := run(); err != nil {
		s.logger.Debug("media command rejected",
			slog.String("command", name),
			slog.Any("error", err))
	}
}

// seekBy seeks relative to the current position. A zero offset means
// the default forward step. The target is clamped by the player.
func (s *ControlService) seekBy(offset time.Duration) {
	if offset == 0 {
		offset = SeekStep
	}
	snapshot := s.player.Snapshot()
	s.command("seek", func() error {
		return s.player.Seek(snapshot.Position + offset)
	})
}

func (s *ControlService) seekTo(position time.Duration) {
	s.command("seek", func() error {
		return s.player.Seek(position)
	})
}

func transportState(status domain.PlaybackStatus) ports.TransportState {
	switch status {
	case domain.StatusPlaying:
		return ports.TransportPlaying
	case domain.StatusPaused:
		return ports.TransportPaused
	default:
		return ports.TransportStopped
	}
}

// nowPlaying maps a track to the surface metadata. Duration comes from
// the player state so the engine's decoded value wins over the stored
// estimate.
func nowPlaying(track domain.Track, duration time.Duration) ports.NowPlaying {
	info := ports.NowPlaying{
		Title:    track.Title,
		Artist:   track.Artist,
		Album:    track.Album,
		Duration: duration,
	}
	if track.Thumbnail != "" {
		info.Artwork = make([]ports.Artwork, 0, len(artworkSizes))
		for _, size := range artworkSizes {
			info.Artwork = append(info.Artwork, ports.Artwork{Size: size, URL: track.Thumbnail})
		}
	}
	return info
}
