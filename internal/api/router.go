package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.Post("/{zone}/select", s.handleSelectZone)

			r.Route("/active", func(r chi.Router) {
				r.Get("/", s.handleActiveZone)
				r.Delete("/", s.handleDeselectZone)
				r.Post("/presets/{preset}", s.handleApplyPreset)
			})
		})

		r.Route("/devices/{device}", func(r chi.Router) {
			r.Get("/feedback", s.handleDeviceFeedback)
			r.Post("/commands", s.handleDeviceCommand)
		})

		r.Get("/feedback/{kind}/{id}/history", s.handleFeedbackHistory)

		r.Get(wsPath(s.wsCfg), s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func wsPath(cfg config.WebSocketConfig) string {
	if cfg.Path == "" {
		return "/ws"
	}
	return cfg.Path
}
