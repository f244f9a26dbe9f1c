package connection

import "errors"

// Domain-specific errors for connection operations.
// They are informational: the Manager's state and status events are the
// authoritative outcome of a Connect call.
var (
	// ErrInvalidAddress is returned when Connect is called with an empty or
	// malformed address.
	ErrInvalidAddress = errors.New("connection: invalid address")

	// ErrConnectionFailed is returned when dialling the remote source fails.
	ErrConnectionFailed = errors.New("connection: connection failed")

	// ErrSuperseded is returned when a Connect was overtaken by a later
	// Connect or Disconnect before the dial completed.
	ErrSuperseded = errors.New("connection: superseded by a newer request")
)
