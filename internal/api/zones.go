package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

type deviceSummary struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Category device.Category `json:"category"`
}

type zoneView struct {
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	URL     string          `json:"ws_url,omitempty"`
	Active  bool            `json:"active"`
	Devices []deviceSummary `json:"devices"`
	Presets []string        `json:"presets,omitempty"`
}

func newZoneView(zone *site.Zone, active bool) zoneView {
	view := zoneView{
		Name:    zone.Name,
		Slug:    zone.Slug,
		URL:     zone.URL,
		Active:  active,
		Devices: make([]deviceSummary, 0),
	}
	for _, d := range zone.All() {
		view.Devices = append(view.Devices, deviceSummary{Name: d.Name, Slug: d.Slug, Category: d.Category})
	}
	if zone.Presets != nil {
		view.Presets = zone.Presets.Names()
	}
	return view
}

// handleListZones lists every zone of the site.
func (s *Server) handleListZones(w http.ResponseWriter, _ *http.Request) {
	active := s.session.Zone()
	zones := s.session.Site().Zones
	views := make([]zoneView, 0, len(zones))
	for i := range zones {
		z := &zones[i]
		views = append(views, newZoneView(z, active != nil && active.Slug == z.Slug))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"zones": views,
		"count": len(views),
	})
}

// handleActiveZone returns the active zone.
func (s *Server) handleActiveZone(w http.ResponseWriter, _ *http.Request) {
	zone := s.session.Zone()
	if zone == nil {
		writeDomainError(w, site.ErrNoZone)
		return
	}
	writeJSON(w, http.StatusOK, newZoneView(zone, true))
}

type selectResponse struct {
	Zone      zoneView `json:"zone"`
	Connected bool     `json:"connected"`
	Error     string   `json:"error,omitempty"`
}

// handleSelectZone makes a zone active and connects to its remote source.
// A failed connect answers 502 but the zone stays selected.
func (s *Server) handleSelectZone(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "zone")

	err := s.session.SelectZone(r.Context(), key)
	if err != nil && !errors.Is(err, connection.ErrConnectionFailed) {
		writeDomainError(w, err)
		return
	}

	zone := s.session.Zone()
	if zone == nil {
		writeDomainError(w, site.ErrNoZone)
		return
	}
	resp := selectResponse{
		Zone:      newZoneView(zone, true),
		Connected: s.session.Connected(),
	}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// handleDeselectZone leaves the active zone.
func (s *Server) handleDeselectZone(w http.ResponseWriter, _ *http.Request) {
	s.session.Deselect()
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyPreset runs a light preset of the active zone.
func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	result, err := s.session.ApplyPreset(chi.URLParam(r, "preset"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
