package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/control"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/journal"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeInternal           = "internal_error"
	ErrCodeNotConnected       = "not_connected"
	ErrCodeUpstream           = "upstream_unreachable"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a session, control or journal error to a response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, site.ErrZoneNotFound),
		errors.Is(err, site.ErrPresetNotFound),
		errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, site.ErrNoZone):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, control.ErrNotSent):
		writeError(w, http.StatusServiceUnavailable, ErrCodeNotConnected, err.Error())
	case errors.Is(err, connection.ErrConnectionFailed):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	case errors.Is(err, site.ErrInvalidCommand),
		errors.Is(err, device.ErrUnknownOperation),
		errors.Is(err, control.ErrMissingValue),
		errors.Is(err, control.ErrInvalidValue),
		errors.Is(err, control.ErrUnsupportedAction),
		errors.Is(err, control.ErrNoGesture),
		errors.Is(err, feedback.ErrUnknownKind),
		errors.Is(err, journal.ErrInvalidKey):
		writeBadRequest(w, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
