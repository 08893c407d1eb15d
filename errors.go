package streamctl

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrInvalidTransition indicates a lifecycle operation invoked from
	// a state that does not permit it. Rejected before any network
	// activity.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnexpectedStatus indicates the server answered with a status
	// code other than the success value for the operation.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrBadSessionHeader indicates a setup response whose Session
	// header was missing or not a positive integer.
	ErrBadSessionHeader = errors.New("missing or invalid Session header")

	// ErrNoSink indicates playback was requested before a frame sink
	// was registered.
	ErrNoSink = errors.New("no frame sink registered")
)

// StatusError carries the status code and server-provided reason of a
// failed exchange. It matches ErrUnexpectedStatus under errors.Is.
type StatusError struct {
	Code   int
	Reason string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d %s", e.Code, e.Reason)
}

// Is reports whether target is ErrUnexpectedStatus, allowing callers to
// classify without type assertions.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
