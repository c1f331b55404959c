package apperrors

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrStoreUnavailable marks transport-level failures of the durable store.
	// Callers degrade to the local cache instead of failing the operation.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrTransitionInFlight = errors.New("focus transition already in flight")
	ErrNotRunning         = errors.New("no running focus segment")
	ErrAlreadyRunning     = errors.New("focus segment already running")
	ErrNothingToResume    = errors.New("nothing to resume")
)
