// Package domain defines domain-specific errors, independent of any
// infrastructure concern.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrTrackNotFound is returned when a requested track does not
	// exist in the repository.
	ErrTrackNotFound = errors.New("track not found")

	// ErrPlaylistNotFound is returned when a requested playlist does
	// not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrNoTrackLoaded is returned when a transport operation needs a
	// current track and there is none.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrQueueEmpty is returned when navigation is attempted on an
	// empty queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrInvalidIndex is returned when a queue or playlist index is
	// out of bounds.
	ErrInvalidIndex = errors.New("index out of range")

	// ErrInvalidRating is returned when a rating is outside 0..5.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrUnsupportedFormat is returned for audio formats the engine
	// cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a source file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrScanCancelled is returned when a folder scan is cancelled.
	ErrScanCancelled = errors.New("scan cancelled")

	// ErrDefaultPlaylist is returned when a caller tries to edit or
	// delete the system-maintained "All Tracks" playlist.
	ErrDefaultPlaylist = errors.New("default playlist is system managed")
)

// EngineError is a playback engine failure. Op distinguishes a failed
// load ("load") from a rejected start ("play").
type EngineError struct {
	Op      string // operation that failed: "load", "play", "seek"
	Locator string // source locator, if applicable
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("engine %s failed for %q: %s", e.Op, e.Locator, e.Message)
	}
	return fmt.Sprintf("engine %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError.
func NewEngineError(op, locator, message string, err error) *EngineError {
	return &EngineError{Op: op, Locator: locator, Message: message, Err: err}
}

// RepositoryError is a persistence failure. Repositories report it to
// the caller of the failing operation; in-memory state stays the
// source of truth for the rest of the session.
type RepositoryError struct {
	Op      string // operation that failed: "load", "save", "delete"
	Entity  string // "track", "playlist", "settings"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Entity, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, entity, message string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Entity: entity, Message: message, Err: err}
}

// ValidationError reports malformed input to a public operation. The
// operation is a no-op and state is unchanged.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ServiceError wraps a failing service-layer operation with context.
type ServiceError struct {
	Service string
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Message: message, Err: err}
}
