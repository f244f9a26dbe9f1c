package control

import (
	"fmt"
	"math"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Sender transmits one command and reports whether it was sent.
// *connection.Manager satisfies it.
type Sender interface {
	SendCommand(cmd protocol.Command) bool
}

// Control is the common surface of every device control.
type Control interface {
	Device() device.Device
	State() State
	Handle(action Action) error
	Close()
}

// State is a control's local view, keyed by field name.
type State map[string]any

// Action names accepted by Handle.
const (
	ActionToggle = "toggle"
	ActionLevel  = "level"
	ActionSet    = "set"
	ActionBegin  = "begin"
	ActionMove   = "move"
	ActionEnd    = "end"
	ActionNudge  = "nudge"
	ActionPress  = "press"
	ActionMute   = "mute"
)

// Action is a user intent addressed to a control.
type Action struct {
	Name string `json:"action"`
	// Op selects the operation for controls with several, e.g. "volume".
	Op    string   `json:"op,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

func (a Action) value() (float64, error) {
	if a.Value == nil {
		return 0, fmt.Errorf("%w: %s requires a value", ErrMissingValue, a.Name)
	}
	return *a.Value, nil
}

// New returns the control for dev's category.
func New(source device.Source, dev device.Device, sender Sender) Control {
	switch dev.Category {
	case device.CategoryLighting:
		if !dev.Commands.Has(feedback.KindDigital, device.OpPowerOn) &&
			!dev.Commands.Has(feedback.KindDigital, device.OpPowerOff) &&
			dev.Commands.Has(feedback.KindUShort, device.OpIntensity) {
			return NewLevel(source, dev, device.OpIntensity, 0, 100, sender)
		}
		return NewLight(source, dev, sender)
	case device.CategoryClimate:
		return NewThermostat(source, dev, sender)
	case device.CategoryAudio:
		return NewAudio(source, dev, sender)
	default:
		return NewMomentary(source, dev, sender)
	}
}

// LevelCommands returns the commands that bring a light to level: power_off
// and intensity 0 for zero, power_on and the level otherwise. Operations the
// device lacks are skipped.
func LevelCommands(dev device.Device, level float64) []protocol.Command {
	level = clamp(level, 0, 100)
	power := device.OpPowerOn
	if level == 0 {
		power = device.OpPowerOff
	}

	var cmds []protocol.Command
	if id, ok := dev.Commands.ID(feedback.KindDigital, power); ok {
		cmds = append(cmds, protocol.Digital(id))
	}
	if id, ok := dev.Commands.ID(feedback.KindUShort, device.OpIntensity); ok {
		cmds = append(cmds, protocol.UShort(id, level))
	}
	return cmds
}

// sendAll sends every command, in order, even after a failure.
func sendAll(sender Sender, cmds []protocol.Command) error {
	failed := 0
	for _, cmd := range cmds {
		if !sender.SendCommand(cmd) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrNotSent, failed, len(cmds))
	}
	return nil
}

// slider is one guarded ushort operation. Its owner's mutex protects value.
type slider struct {
	id       int
	min, max float64
	guard    Guard
	value    float64
}

func newSlider(table device.CommandTable, op string, lo, hi, initial float64) *slider {
	id, ok := table.ID(feedback.KindUShort, op)
	if !ok {
		return nil
	}
	return &slider{id: id, min: lo, max: hi, value: initial}
}

func (s *slider) begin() {
	s.guard.Begin(s.value)
}

// move sets the local value and returns the command carrying it.
func (s *slider) move(v float64) protocol.Command {
	s.value = clamp(v, s.min, s.max)
	return protocol.UShort(s.id, s.value)
}

func (s *slider) end() {
	s.guard.End()
}

// observe applies v unless a gesture is active.
func (s *slider) observe(v any) bool {
	if s.guard.Active() {
		return false
	}
	f, ok := toFloat(v)
	if !ok {
		return false
	}
	s.value = f
	return true
}

// gesture runs a begin/move/end action against s and returns the command
// to send, if any.
func (s *slider) gesture(action Action) (*protocol.Command, error) {
	switch action.Name {
	case ActionBegin:
		s.begin()
		return nil, nil
	case ActionMove:
		if !s.guard.Active() {
			return nil, ErrNoGesture
		}
		v, err := action.value()
		if err != nil {
			return nil, err
		}
		cmd := s.move(v)
		return &cmd, nil
	case ActionEnd:
		if !s.guard.Active() {
			return nil, ErrNoGesture
		}
		s.end()
		return nil, nil
	case ActionSet:
		v, err := action.value()
		if err != nil {
			return nil, err
		}
		s.begin()
		cmd := s.move(v)
		s.end()
		return &cmd, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, action.Name)
	}
}

// tracker remembers, per id, the sequence of the last entry a control
// applied. A control reacts to every new write, including a repeated value,
// and an entry it declined (a guarded slider) stays pending until applied or
// replaced.
type tracker struct {
	applied map[int]uint64
	primed  bool
}

// pending returns the entry projected for (kind, id) when it has not been
// applied yet.
func (t *tracker) pending(p device.Projection, kind feedback.Kind, id int) (feedback.Entry, bool) {
	e, ok := p[id]
	if !ok || e.Kind != kind {
		delete(t.applied, id)
		return feedback.Entry{}, false
	}
	if seq, had := t.applied[id]; had && seq == e.Seq {
		return feedback.Entry{}, false
	}
	return e, true
}

// apply marks e as applied.
func (t *tracker) apply(e feedback.Entry) {
	if t.applied == nil {
		t.applied = make(map[int]uint64)
	}
	t.applied[e.ID] = e.Seq
}

// prime reports whether an observation should proceed. The initial read at
// construction is skipped once a store notification has been applied.
func (t *tracker) prime(initial bool) bool {
	if initial && t.primed {
		return false
	}
	t.primed = true
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint16:
		return float64(n), true
	default:
		return 0, false
	}
}
