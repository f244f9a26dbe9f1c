package site

import "errors"

// Domain-specific errors for site operations.
var (
	// ErrInvalidSite is returned when a site file fails validation.
	ErrInvalidSite = errors.New("site: invalid site")

	// ErrZoneNotFound is returned when a zone name or slug does not exist.
	ErrZoneNotFound = errors.New("site: zone not found")

	// ErrNoZone is returned when an operation needs a selected zone.
	ErrNoZone = errors.New("site: no zone selected")

	// ErrPresetNotFound is returned when a zone has no such light preset.
	ErrPresetNotFound = errors.New("site: preset not found")

	// ErrInvalidCommand is returned for a command with neither or both of
	// op and action, or a malformed value.
	ErrInvalidCommand = errors.New("site: invalid command")
)
