// Package mock provides an in-memory MediaSession for tests. It
// records every publication and lets tests trigger inbound commands.
package mock

import (
	"sync"
	"time"

	"github.com/auralplayer/aural/internal/ports"
)

// TransportUpdate is one recorded PublishTransport call.
type TransportUpdate struct {
	State    ports.TransportState
	Position time.Duration
}

// Session records outbound publications and exposes the registered
// command handlers for tests to invoke.
type Session struct {
	mu         sync.Mutex
	commands   ports.MediaCommands
	nowPlaying []ports.NowPlaying
	transports []TransportUpdate
	closed     bool

	failPublish error
}

// NewSession creates a mock media session.
func NewSession() *Session {
	return &Session{}
}

// SetFailPublish makes both publish methods return err.
func (s *Session) SetFailPublish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPublish = err
}

// SetCommands registers the inbound command handlers.
func (s *Session) SetCommands(commands ports.MediaCommands) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = commands
}

// PublishNowPlaying records the metadata publication.
func (s *Session) PublishNowPlaying(info ports.NowPlaying) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPublish != nil {
		return s.failPublish
	}
	s.nowPlaying = append(s.nowPlaying, info)
	return nil
}

// PublishTransport records the transport publication.
func (s *Session) PublishTransport(state ports.TransportState, position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPublish != nil {
		return s.failPublish
	}
	s.transports = append(s.transports, TransportUpdate{State: state, Position: position})
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Commands returns the registered handlers so tests can fire them.
func (s *Session) Commands() ports.MediaCommands {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands
}

// NowPlayingCalls returns every recorded metadata publication.
func (s *Session) NowPlayingCalls() []ports.NowPlaying {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.NowPlaying, len(s.nowPlaying))
	copy(out, s.nowPlaying)
	return out
}

// TransportCalls returns every recorded transport publication.
func (s *Session) TransportCalls() []TransportUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TransportUpdate, len(s.transports))
	copy(out, s.transports)
	return out
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ ports.MediaSession = (*Session)(nil)
