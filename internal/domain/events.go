// Package domain defines the events exchanged over the event bus.
// Events decouple the engine, the player state and the outward-facing
// bridges from one another.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier.
	Type() EventType

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Engine lifecycle events. Each carries the Generation of the
	// load it belongs to; consumers drop events from stale loads.
	EventEngineMetadata EventType = "engine.metadata"
	EventEngineProgress EventType = "engine.progress"
	EventEngineEnded    EventType = "engine.ended"
	EventEngineFailed   EventType = "engine.failed"

	// Player state events.
	EventPlayerState EventType = "player.state"
	EventPlayerError EventType = "player.error"

	// Preference-relevant changes, persisted by the settings service.
	EventVolumeChanged EventType = "volume.changed"
	EventRateChanged   EventType = "rate.changed"
	EventModeChanged   EventType = "mode.changed"

	// Queue and playlist events.
	EventQueueChanged    EventType = "queue.changed"
	EventPlaylistUpdated EventType = "playlist.updated"

	// Library events.
	EventTrackDeleted   EventType = "library.track_deleted"
	EventLibraryChanged EventType = "library.changed"
	EventScanStarted    EventType = "scan.started"
	EventScanProgress   EventType = "scan.progress"
	EventScanCompleted  EventType = "scan.completed"
	EventScanCancelled  EventType = "scan.cancelled"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides the timestamp shared by all concrete events.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// EngineMetadataEvent is published once the engine has decoded the
// stream and knows its authoritative duration.
type EngineMetadataEvent struct {
	baseEvent
	Generation Generation
	Duration   time.Duration
}

// Type returns the event type.
func (e EngineMetadataEvent) Type() EventType { return EventEngineMetadata }

// NewEngineMetadataEvent creates a new EngineMetadataEvent.
func NewEngineMetadataEvent(gen Generation, duration time.Duration) EngineMetadataEvent {
	return EngineMetadataEvent{baseEvent: newBaseEvent(), Generation: gen, Duration: duration}
}

// EngineProgressEvent is published periodically while audio renders.
type EngineProgressEvent struct {
	baseEvent
	Generation Generation
	Position   time.Duration
	Duration   time.Duration
}

// Type returns the event type.
func (e EngineProgressEvent) Type() EventType { return EventEngineProgress }

// NewEngineProgressEvent creates a new EngineProgressEvent.
func NewEngineProgressEvent(gen Generation, position, duration time.Duration) EngineProgressEvent {
	return EngineProgressEvent{baseEvent: newBaseEvent(), Generation: gen, Position: position, Duration: duration}
}

// EngineEndedEvent is published when the stream reaches its natural
// end. It is not published on Stop or when a load supersedes.
type EngineEndedEvent struct {
	baseEvent
	Generation Generation
}

// Type returns the event type.
func (e EngineEndedEvent) Type() EventType { return EventEngineEnded }

// NewEngineEndedEvent creates a new EngineEndedEvent.
func NewEngineEndedEvent(gen Generation) EngineEndedEvent {
	return EngineEndedEvent{baseEvent: newBaseEvent(), Generation: gen}
}

// EngineFailedEvent is published when a load cannot be decoded or
// playback cannot be started. Op is "load" or "play".
type EngineFailedEvent struct {
	baseEvent
	Generation Generation
	Op         string
	Err        error
}

// Type returns the event type.
func (e EngineFailedEvent) Type() EventType { return EventEngineFailed }

// NewEngineFailedEvent creates a new EngineFailedEvent.
func NewEngineFailedEvent(gen Generation, op string, err error) EngineFailedEvent {
	return EngineFailedEvent{baseEvent: newBaseEvent(), Generation: gen, Op: op, Err: err}
}

// PlayerStateEvent is published after every externally visible player
// mutation. State is a snapshot taken at publish time, never a live
// reference, so consumers always see the freshest committed state.
type PlayerStateEvent struct {
	baseEvent
	State PlayerSnapshot
}

// Type returns the event type.
func (e PlayerStateEvent) Type() EventType { return EventPlayerState }

// NewPlayerStateEvent creates a new PlayerStateEvent.
func NewPlayerStateEvent(state PlayerSnapshot) PlayerStateEvent {
	return PlayerStateEvent{baseEvent: newBaseEvent(), State: state}
}

// PlayerErrorEvent reports a playback failure. The player keeps
// accepting commands after publishing it; there is no automatic retry.
type PlayerErrorEvent struct {
	baseEvent
	Track *Track
	Err   error
}

// Type returns the event type.
func (e PlayerErrorEvent) Type() EventType { return EventPlayerError }

// NewPlayerErrorEvent creates a new PlayerErrorEvent.
func NewPlayerErrorEvent(track *Track, err error) PlayerErrorEvent {
	return PlayerErrorEvent{baseEvent: newBaseEvent(), Track: track, Err: err}
}

// VolumeChangedEvent is published when the (already clamped) volume
// changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// RateChangedEvent is published when the (already clamped) playback
// rate changes.
type RateChangedEvent struct {
	baseEvent
	Rate float64
}

// Type returns the event type.
func (e RateChangedEvent) Type() EventType { return EventRateChanged }

// NewRateChangedEvent creates a new RateChangedEvent.
func NewRateChangedEvent(rate float64) RateChangedEvent {
	return RateChangedEvent{baseEvent: newBaseEvent(), Rate: rate}
}

// ModeChangedEvent is published when repeat or shuffle changes.
type ModeChangedEvent struct {
	baseEvent
	Repeat  RepeatMode
	Shuffle bool
}

// Type returns the event type.
func (e ModeChangedEvent) Type() EventType { return EventModeChanged }

// NewModeChangedEvent creates a new ModeChangedEvent.
func NewModeChangedEvent(repeat RepeatMode, shuffle bool) ModeChangedEvent {
	return ModeChangedEvent{baseEvent: newBaseEvent(), Repeat: repeat, Shuffle: shuffle}
}

// QueueChangedEvent is published when the working queue is replaced or
// edited.
type QueueChangedEvent struct {
	baseEvent
	Queue []Track
	Index int
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType { return EventQueueChanged }

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []Track, index int) QueueChangedEvent {
	return QueueChangedEvent{baseEvent: newBaseEvent(), Queue: queue, Index: index}
}

// PlaylistUpdatedEvent is published after a playlist create, update,
// delete or reorder.
type PlaylistUpdatedEvent struct {
	baseEvent
	PlaylistID string
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType { return EventPlaylistUpdated }

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(playlistID string) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{baseEvent: newBaseEvent(), PlaylistID: playlistID}
}

// TrackDeletedEvent is published when a track leaves the library. The
// player removes it from the queue and playlists drop their
// references in response.
type TrackDeletedEvent struct {
	baseEvent
	TrackID string
}

// Type returns the event type.
func (e TrackDeletedEvent) Type() EventType { return EventTrackDeleted }

// NewTrackDeletedEvent creates a new TrackDeletedEvent.
func NewTrackDeletedEvent(trackID string) TrackDeletedEvent {
	return TrackDeletedEvent{baseEvent: newBaseEvent(), TrackID: trackID}
}

// LibraryChangedEvent is published when the track collection changed,
// for example because the library index file was rewritten by the
// ingester. The default "All Tracks" playlist is regenerated from it.
type LibraryChangedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e LibraryChangedEvent) Type() EventType { return EventLibraryChanged }

// NewLibraryChangedEvent creates a new LibraryChangedEvent.
func NewLibraryChangedEvent() LibraryChangedEvent {
	return LibraryChangedEvent{baseEvent: newBaseEvent()}
}

// ScanProgress describes how far a folder scan has come.
type ScanProgress struct {
	CurrentFile  string
	FilesScanned int
	TotalFiles   int
	TracksFound  int
}

// ScanStartedEvent is published when a folder scan starts.
type ScanStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(path string) ScanStartedEvent {
	return ScanStartedEvent{baseEvent: newBaseEvent(), Path: path}
}

// ScanProgressEvent is published per scanned file.
type ScanProgressEvent struct {
	baseEvent
	Progress ScanProgress
}

// Type returns the event type.
func (e ScanProgressEvent) Type() EventType { return EventScanProgress }

// NewScanProgressEvent creates a new ScanProgressEvent.
func NewScanProgressEvent(progress ScanProgress) ScanProgressEvent {
	return ScanProgressEvent{baseEvent: newBaseEvent(), Progress: progress}
}

// ScanCompletedEvent is published when a folder scan finishes.
type ScanCompletedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(tracks []Track) ScanCompletedEvent {
	return ScanCompletedEvent{baseEvent: newBaseEvent(), Tracks: tracks}
}

// ScanCancelledEvent is published when a folder scan is cancelled.
type ScanCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ScanCancelledEvent) Type() EventType { return EventScanCancelled }

// NewScanCancelledEvent creates a new ScanCancelledEvent.
func NewScanCancelledEvent(reason string) ScanCancelledEvent {
	return ScanCancelledEvent{baseEvent: newBaseEvent(), Reason: reason}
}
