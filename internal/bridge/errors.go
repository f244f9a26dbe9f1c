package bridge

import "errors"

var (
	// ErrWrongZone is returned for a command addressed to an inactive zone.
	ErrWrongZone = errors.New("bridge: zone not active")

	// ErrInvalidCommand is returned for an undecodable command payload.
	ErrInvalidCommand = errors.New("bridge: invalid command")
)
