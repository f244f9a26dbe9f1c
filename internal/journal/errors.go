package journal

import "errors"

var (
	// ErrInvalidKey is returned when a history query names no valid kind/id.
	ErrInvalidKey = errors.New("journal: invalid feedback key")

	// ErrInvalidRetention is returned when Prune is given a non-positive age.
	ErrInvalidRetention = errors.New("journal: retention must be positive")
)
