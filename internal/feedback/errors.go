package feedback

import "errors"

// Domain errors for the feedback package.
var (
	// ErrUnknownKind is returned when a kind name or value is not recognised.
	ErrUnknownKind = errors.New("feedback: unknown kind")
)
