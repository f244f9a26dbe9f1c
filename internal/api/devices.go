package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-remote/internal/control"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

type deviceFeedback struct {
	Device   string                           `json:"device"`
	Name     string                           `json:"name"`
	Category device.Category                  `json:"category"`
	Feedback map[feedback.Kind]map[string]any `json:"feedback"`
	State    control.State                    `json:"state,omitempty"`
}

func (s *Server) deviceFeedback(key string) (deviceFeedback, error) {
	dev, err := s.session.Device(key)
	if err != nil {
		return deviceFeedback{}, err
	}
	out := deviceFeedback{
		Device:   dev.Slug,
		Name:     dev.Name,
		Category: dev.Category,
		Feedback: device.Project(s.store, dev.Commands).ByOp(dev.Commands),
	}
	if c, err := s.session.Control(key); err == nil && c != nil {
		out.State = c.State()
	}
	return out, nil
}

// handleDeviceFeedback returns a device's feedback by operation plus its
// control's local state.
func (s *Server) handleDeviceFeedback(w http.ResponseWriter, r *http.Request) {
	out, err := s.deviceFeedback(chi.URLParam(r, "device"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeviceCommand runs one op or control action against a device.
//
// The command is accepted once sent; confirmation arrives later as feedback.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "device")

	var cmd site.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return
		}
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.session.Execute(key, cmd); err != nil {
		s.logger.Debug("device command rejected", "device", key, "op", cmd.Op, "action", cmd.Action, "error", err)
		writeDomainError(w, err)
		return
	}

	out, err := s.deviceFeedback(key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}
