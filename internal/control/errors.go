package control

import "errors"

// Domain-specific errors for control operations.
var (
	// ErrNotSent is returned when at least one command could not be sent,
	// typically because the connection is down. Local state is still updated.
	ErrNotSent = errors.New("control: command not sent")

	// ErrUnsupportedAction is returned when a control cannot perform an action.
	ErrUnsupportedAction = errors.New("control: unsupported action")

	// ErrMissingValue is returned when an action requires a value.
	ErrMissingValue = errors.New("control: missing value")

	// ErrNoGesture is returned by move or end without a preceding begin.
	ErrNoGesture = errors.New("control: no gesture in progress")
)

// ErrInvalidValue is returned when a command value has the wrong type for
// its operation.
var ErrInvalidValue = errors.New("control: invalid value")
