package tutor

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates input was offered to a closed stream or decoder.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNoToken indicates no bearer token is stored.
	ErrNoToken = errors.New("no token stored")

	// ErrUnauthorized indicates the backend rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError reports a network failure or a non-2xx response from the
// backend. StatusCode is zero for network-level failures.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("transport: %v", e.Err)
	default:
		return "transport failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
