package site

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/control"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Logger defines the logging interface used by the Session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Connector is the connection surface a Session drives.
// *connection.Manager satisfies it.
type Connector interface {
	Connect(ctx context.Context, address string) error
	Disconnect(silent bool)
	IsConnected() bool
	SendCommand(cmd protocol.Command) bool
}

// ZoneListener is told about every zone change. zone is nil after Deselect.
type ZoneListener func(zone *Zone)

// PresetResult describes how a preset was applied.
type PresetResult struct {
	Name string `json:"name"`
	// Remote is true when the preset command was sent to the remote source.
	Remote bool `json:"remote"`
	// Level is the intensity applied to each light when not Remote.
	Level float64 `json:"level,omitempty"`
}

// Session holds the active zone and its controls.
type Session struct {
	site  *Site
	store *feedback.Store
	conn  Connector

	// selectMu serialises zone changes, including the connect that follows.
	selectMu sync.Mutex

	mu        sync.RWMutex
	zone      *Zone
	controls  map[string]control.Control
	listeners []ZoneListener
	logger    Logger
}

// NewSession creates a session with no zone selected.
func NewSession(s *Site, store *feedback.Store, conn Connector) *Session {
	return &Session{
		site:     s,
		store:    store,
		conn:     conn,
		controls: make(map[string]control.Control),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// OnZoneChange registers a listener called after every zone change, before
// the new zone's connection is attempted.
func (s *Session) OnZoneChange(listener ZoneListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// Site returns the loaded site.
func (s *Session) Site() *Site {
	return s.site
}

// SelectZone makes key the active zone: it silently disconnects, clears the
// store, rebuilds the controls and connects to the zone's address. A zone
// without an address stays disconnected. A connection failure is returned
// but leaves the zone selected.
func (s *Session) SelectZone(ctx context.Context, key string) error {
	zone, err := s.site.Zone(key)
	if err != nil {
		return err
	}

	s.selectMu.Lock()
	defer s.selectMu.Unlock()

	s.scope(zone)

	logger := s.log()
	if zone.URL == "" {
		logger.Warn("zone has no address, staying disconnected", "zone", zone.Name)
		return nil
	}
	logger.Info("zone selected", "zone", zone.Name, "address", zone.URL)
	return s.conn.Connect(ctx, zone.URL)
}

// Deselect leaves the active zone: silent disconnect, cleared store and no
// controls.
func (s *Session) Deselect() {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()
	s.scope(nil)
	s.log().Info("zone deselected")
}

// scope tears down the current zone and installs zone, which may be nil.
func (s *Session) scope(zone *Zone) {
	s.conn.Disconnect(true)
	s.store.Clear()

	s.mu.Lock()
	for slug, c := range s.controls {
		c.Close()
		delete(s.controls, slug)
	}
	s.zone = zone
	if zone != nil {
		for _, d := range zone.All() {
			s.controls[d.Slug] = control.New(s.store, d, s)
		}
	}
	listeners := make([]ZoneListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(zone)
	}
}

// Close closes every control. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slug, c := range s.controls {
		c.Close()
		delete(s.controls, slug)
	}
	s.zone = nil
}

// Zone returns the active zone, or nil.
func (s *Session) Zone() *Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zone
}

// Connected reports whether the zone's remote source is connected.
func (s *Session) Connected() bool {
	return s.conn.IsConnected()
}

// SendCommand forwards cmd to the connection. It makes the Session the
// Sender of its controls.
func (s *Session) SendCommand(cmd protocol.Command) bool {
	return s.conn.SendCommand(cmd)
}

// Control returns the control of the active zone's device key (slug or name).
func (s *Session) Control(key string) (control.Control, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.zone == nil {
		return nil, ErrNoZone
	}
	d, err := s.zone.Device(key)
	if err != nil {
		return nil, err
	}
	return s.controls[d.Slug], nil
}

// Device returns a device of the active zone by slug or name.
func (s *Session) Device(key string) (device.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.zone == nil {
		return device.Device{}, ErrNoZone
	}
	return s.zone.Device(key)
}

// ApplyPreset runs light preset name. When connected the preset's digital
// command is sent and the remote source applies the scene. Otherwise every
// light of the zone is set to the preset's level locally and the matching
// power and intensity commands are attempted.
func (s *Session) ApplyPreset(name string) (PresetResult, error) {
	s.mu.RLock()
	zone := s.zone
	var lights []*control.LightControl
	if zone != nil {
		for _, d := range zone.Devices.Lights {
			if !d.Commands.Has(feedback.KindUShort, device.OpIntensity) {
				continue
			}
			if lc, ok := s.controls[d.Slug].(*control.LightControl); ok {
				lights = append(lights, lc)
			}
		}
	}
	logger := s.logger
	s.mu.RUnlock()

	if zone == nil {
		return PresetResult{}, ErrNoZone
	}
	if zone.Presets == nil {
		return PresetResult{}, fmt.Errorf("%w: zone %s has no presets", ErrPresetNotFound, zone.Name)
	}
	id, ok := zone.Presets.Commands[name]
	if !ok {
		return PresetResult{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}

	if s.conn.IsConnected() {
		if !s.conn.SendCommand(protocol.Digital(id)) {
			return PresetResult{}, fmt.Errorf("preset %s: %w", name, control.ErrNotSent)
		}
		logger.Info("preset sent", "zone", zone.Name, "preset", name, "id", id)
		return PresetResult{Name: name, Remote: true}, nil
	}

	level, ok := zone.Presets.Level(name)
	if !ok {
		return PresetResult{}, fmt.Errorf("%w: %q has no offline level", ErrPresetNotFound, name)
	}
	for _, lc := range lights {
		if err := lc.SetLevel(level); err != nil && !errors.Is(err, control.ErrNotSent) {
			return PresetResult{}, err
		}
	}
	logger.Info("preset applied locally", "zone", zone.Name, "preset", name, "level", level, "lights", len(lights))
	return PresetResult{Name: name, Level: level}, nil
}

func (s *Session) log() Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}
