package browser

import "errors"

var (
	// ErrEmptyResponse is returned when the transport succeeds but hands
	// back no bytes.
	ErrEmptyResponse = errors.New("empty response from transport")
	// ErrSessionClosed is returned by requests made after Close.
	ErrSessionClosed = errors.New("session is closed")
	// ErrNoTransport is returned when a session has no transport factory.
	ErrNoTransport = errors.New("no transport configured")
)
