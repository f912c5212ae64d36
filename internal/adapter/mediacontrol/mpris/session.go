// Package mpris exposes the player on the org.mpris.MediaPlayer2 D-Bus
// interface so desktop media controls (hardware keys, GNOME/KDE
// applets) can observe and drive playback.
package mpris

import (
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/auralplayer/aural/internal/ports"
)

const (
	busName     = "org.mpris.MediaPlayer2.aural"
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	propsIface  = "org.freedesktop.DBus.Properties"
)

// Available reports whether a D-Bus session bus can be reached. When
// it cannot, the player runs without a media-control surface.
func Available() bool {
	conn, err := dbus.SessionBus()
	if err != nil {
		return false
	}
	return conn.Connected()
}

// Session publishes now-playing metadata and transport state over
// MPRIS and forwards incoming transport method calls to the
// registered command handlers.
type Session struct {
	conn   *dbus.Conn
	logger *slog.Logger

	mu       sync.Mutex
	commands ports.MediaCommands
	status   string
	position time.Duration
	metadata map[string]dbus.Variant
}

// NewSession claims the MPRIS bus name and exports the player object.
func NewSession(logger *slog.Logger) (*Session, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	s := &Session{
		conn:     conn,
		logger:   logger,
		status:   "Stopped",
		metadata: map[string]dbus.Variant{},
	}

	if err := conn.Export(&rootObject{}, objectPath, rootIface); err != nil {
		return nil, err
	}
	if err := conn.Export(&playerObject{session: s}, objectPath, playerIface); err != nil {
		return nil, err
	}
	if err := conn.Export(s, objectPath, propsIface); err != nil {
		return nil, err
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner && logger != nil {
		logger.Warn("mpris bus name not primary owner")
	}
	return s, nil
}

// SetCommands registers the inbound command handlers.
func (s *Session) SetCommands(commands ports.MediaCommands) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = commands
}

// PublishNowPlaying pushes track metadata as the MPRIS Metadata
// property.
func (s *Session) PublishNowPlaying(info ports.NowPlaying) error {
	metadata := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/aural/track/current")),
		"xesam:title":   dbus.MakeVariant(info.Title),
		"xesam:artist":  dbus.MakeVariant([]string{info.Artist}),
		"mpris:length":  dbus.MakeVariant(info.Duration.Microseconds()),
	}
	if info.Album != "" {
		metadata["xesam:album"] = dbus.MakeVariant(info.Album)
	}
	if len(info.Artwork) > 0 {
		// MPRIS takes a single art URL; the largest rendition wins.
		best := info.Artwork[0]
		for _, art := range info.Artwork[1:] {
			if art.Size > best.Size {
				best = art
			}
		}
		metadata["mpris:artUrl"] = dbus.MakeVariant(best.URL)
	}

	s.mu.Lock()
	s.metadata = metadata
	s.mu.Unlock()

	return s.emitChanged(map[string]dbus.Variant{
		"Metadata": dbus.MakeVariant(metadata),
	})
}

// PublishTransport pushes the transport state and position.
func (s *Session) PublishTransport(state ports.TransportState, position time.Duration) error {
	status := "Stopped"
	switch state {
	case ports.TransportPlaying:
		status = "Playing"
	case ports.TransportPaused:
		status = "Paused"
	}

	s.mu.Lock()
	s.status = status
	s.position = position
	s.mu.Unlock()

	return s.emitChanged(map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(status),
		"Position":       dbus.MakeVariant(position.Microseconds()),
	})
}

// Close releases the bus name.
func (s *Session) Close() error {
	_, err := s.conn.ReleaseName(busName)
	return err
}

func (s *Session) emitChanged(changed map[string]dbus.Variant) error {
	return s.conn.Emit(objectPath, propsIface+".PropertiesChanged",
		playerIface, changed, []string{})
}

func (s *Session) snapshot() (ports.MediaCommands, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands, s.position
}

// Get implements org.freedesktop.DBus.Properties for the few
// properties desktop shells query.
func (s *Session) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	all, err := s.GetAll(iface)
	if err != nil {
		return dbus.Variant{}, err
	}
	value, ok := all[property]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(dbus.ErrMsgNoObject)
	}
	return value, nil
}

// GetAll implements org.freedesktop.DBus.Properties.
func (s *Session) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch iface {
	case rootIface:
		return map[string]dbus.Variant{
			"Identity":            dbus.MakeVariant("Aural"),
			"CanQuit":             dbus.MakeVariant(false),
			"CanRaise":            dbus.MakeVariant(false),
			"HasTrackList":        dbus.MakeVariant(false),
			"SupportedUriSchemes": dbus.MakeVariant([]string{"file"}),
			"SupportedMimeTypes":  dbus.MakeVariant([]string{"audio/mpeg", "audio/x-wav", "audio/flac", "audio/ogg"}),
		}, nil
	case playerIface:
		return map[string]dbus.Variant{
			"PlaybackStatus": dbus.MakeVariant(s.status),
			"Position":       dbus.MakeVariant(s.position.Microseconds()),
			"Metadata":       dbus.MakeVariant(s.metadata),
			"CanGoNext":      dbus.MakeVariant(true),
			"CanGoPrevious":  dbus.MakeVariant(true),
			"CanPlay":        dbus.MakeVariant(true),
			"CanPause":       dbus.MakeVariant(true),
			"CanSeek":        dbus.MakeVariant(true),
			"CanControl":     dbus.MakeVariant(true),
		}, nil
	}
	return map[string]dbus.Variant{}, nil
}

// Set implements org.freedesktop.DBus.Properties; all surfaced
// properties are read-only.
func (s *Session) Set(iface, property string, value dbus.Variant) *dbus.Error {
	return nil
}

// rootObject serves the org.mpris.MediaPlayer2 methods.
type rootObject struct{}

func (o *rootObject) Raise() *dbus.Error { return nil }
func (o *rootObject) Quit() *dbus.Error  { return nil }

// playerObject serves the org.mpris.MediaPlayer2.Player transport
// methods, dispatching to the registered command handlers.
type playerObject struct {
	session *Session
}

func (o *playerObject) Play() *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnPlay != nil {
		commands.OnPlay()
	}
	return nil
}

func (o *playerObject) Pause() *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnPause != nil {
		commands.OnPause()
	}
	return nil
}

func (o *playerObject) PlayPause() *dbus.Error {
	commands, _ := o.session.snapshot()
	o.session.mu.Lock()
	playing := o.session.status == "Playing"
	o.session.mu.Unlock()

	if playing {
		if commands.OnPause != nil {
			commands.OnPause()
		}
	} else if commands.OnPlay != nil {
		commands.OnPlay()
	}
	return nil
}

func (o *playerObject) Stop() *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnStop != nil {
		commands.OnStop()
	}
	return nil
}

func (o *playerObject) Next() *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnNext != nil {
		commands.OnNext()
	}
	return nil
}

func (o *playerObject) Previous() *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnPrevious != nil {
		commands.OnPrevious()
	}
	return nil
}

// Seek receives a relative offset in microseconds.
func (o *playerObject) Seek(offset int64) *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnSeekBy != nil {
		commands.OnSeekBy(time.Duration(offset) * time.Microsecond)
	}
	return nil
}

// SetPosition receives an absolute position in microseconds.
func (o *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	commands, _ := o.session.snapshot()
	if commands.OnSeekTo != nil {
		commands.OnSeekTo(time.Duration(position) * time.Microsecond)
	}
	return nil
}

var _ ports.MediaSession = (*Session)(nil)
