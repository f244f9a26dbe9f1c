package protocol

import (
	"errors"
	"fmt"
)

// ErrProtocol is the parent of every inbound decoding error. Protocol errors
// are non-fatal: the message is logged and dropped.
var ErrProtocol = errors.New("protocol: error")

// Inbound errors. All wrap ErrProtocol.
var (
	// ErrMalformed is returned when a payload is not well-formed JSON or is
	// missing a required field.
	ErrMalformed = fmt.Errorf("%w: malformed payload", ErrProtocol)

	// ErrUnknownAction is returned for an action other than action_onopen
	// or action_feedback.
	ErrUnknownAction = fmt.Errorf("%w: unknown action", ErrProtocol)

	// ErrUnknownType is returned for a type other than boolean, ushort or string.
	ErrUnknownType = fmt.Errorf("%w: unknown type", ErrProtocol)
)

// ErrInvalidCommand is returned by Encode when a command cannot be
// represented on the wire.
var ErrInvalidCommand = errors.New("protocol: invalid command")
