package device

import "errors"

// Domain-specific errors for device operations.
// Callers should use errors.Is() to check for these errors:
//
//	if errors.Is(err, device.ErrUnknownOperation) {
//	    // handle unknown operation
//	}
var (
	// ErrDeviceNotFound is returned when a device name or slug does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("device: invalid slug")

	// ErrInvalidCategory is returned when a category value is not recognised.
	ErrInvalidCategory = errors.New("device: invalid category")

	// ErrInvalidCommands is returned when a command table is malformed.
	ErrInvalidCommands = errors.New("device: invalid command table")

	// ErrUnknownOperation is returned when a device has no command for an
	// operation.
	ErrUnknownOperation = errors.New("device: unknown operation")
)
