package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

type connectionView struct {
	State          string `json:"state"`
	Address        string `json:"address,omitempty"`
	FailedAttempts int    `json:"failed_attempts"`
}

type statusResponse struct {
	Version          string                `json:"version"`
	Connection       connectionView        `json:"connection"`
	Zone             string                `json:"zone,omitempty"`
	Feedback         map[feedback.Kind]int `json:"feedback"`
	WebSocketClients int                   `json:"websocket_clients"`
}

// handleStatus reports the connection, the active zone and the number of
// feedback entries held per kind.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Version: s.version,
		Connection: connectionView{
			State:          s.connection.State().String(),
			Address:        s.connection.Address(),
			FailedAttempts: s.connection.FailedAttempts(),
		},
		Feedback:         make(map[feedback.Kind]int, len(feedback.Kinds())),
		WebSocketClients: s.hub.ClientCount(),
	}
	if zone := s.session.Zone(); zone != nil {
		resp.Zone = zone.Slug
	}
	for _, kind := range feedback.Kinds() {
		resp.Feedback[kind] = s.store.Len(kind)
	}
	writeJSON(w, http.StatusOK, resp)
}
