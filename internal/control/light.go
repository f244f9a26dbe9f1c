package control

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Intensity applied when a light is switched on with the toggle.
const toggleOnIntensity = 50

// LightControl drives a light with a power switch and a dimmable intensity.
type LightControl struct {
	dev       device.Device
	sender    Sender
	projector *device.Projector

	mu        sync.Mutex
	on        bool
	intensity *slider
	track     tracker
}

// NewLight creates a light control. The light starts off at intensity 50
// until feedback says otherwise.
func NewLight(source device.Source, dev device.Device, sender Sender) *LightControl {
	c := &LightControl{
		dev:       dev,
		sender:    sender,
		intensity: newSlider(dev.Commands, device.OpIntensity, 0, 100, toggleOnIntensity),
	}
	c.projector = device.NewProjector(source, dev, func(p device.Projection) { c.observe(p, false) })
	c.observe(c.projector.Current(), true)
	return c
}

// Device returns the controlled device.
func (c *LightControl) Device() device.Device { return c.dev }

// IsOn reports the switch state.
func (c *LightControl) IsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

// Intensity returns the displayed intensity.
func (c *LightControl) Intensity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intensity == nil {
		return 0
	}
	return c.intensity.value
}

// Toggle flips the switch. Switching on sends power_on and intensity 50;
// switching off sends power_off and intensity 0. Commands are only sent
// when the device has an intensity operation.
func (c *LightControl) Toggle() error {
	c.mu.Lock()
	c.on = !c.on
	var cmds []protocol.Command
	if c.intensity != nil {
		level := 0.0
		if c.on {
			level = toggleOnIntensity
		}
		c.intensity.value = level
		cmds = LevelCommands(c.dev, level)
	}
	c.mu.Unlock()
	return sendAll(c.sender, cmds)
}

// SetLevel shows level locally and sends power plus intensity, as a preset
// does when no preset command is available.
func (c *LightControl) SetLevel(level float64) error {
	c.mu.Lock()
	level = clamp(level, 0, 100)
	if c.intensity != nil {
		c.intensity.value = level
	}
	c.on = level > 0
	cmds := LevelCommands(c.dev, level)
	c.mu.Unlock()
	return sendAll(c.sender, cmds)
}

// BeginGesture starts an intensity manipulation.
func (c *LightControl) BeginGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intensity != nil {
		c.intensity.begin()
	}
}

// Move sets and sends the intensity. Only the intensity command is sent;
// the switch follows the value locally.
func (c *LightControl) Move(v float64) error {
	c.mu.Lock()
	if c.intensity == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no intensity", ErrUnsupportedAction, c.dev.Name)
	}
	cmd := c.intensity.move(v)
	c.syncSwitchLocked()
	c.mu.Unlock()
	return sendAll(c.sender, []protocol.Command{cmd})
}

// EndGesture ends the intensity manipulation.
func (c *LightControl) EndGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intensity != nil {
		c.intensity.end()
	}
}

// State implements Control.
func (c *LightControl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{"on": c.on}
	if c.intensity != nil {
		s["intensity"] = c.intensity.value
		s["manipulating"] = c.intensity.guard.Active()
	}
	return s
}

// Handle accepts toggle, level, set, begin, move and end.
func (c *LightControl) Handle(action Action) error {
	switch action.Name {
	case ActionToggle:
		return c.Toggle()
	case ActionLevel:
		v, err := action.value()
		if err != nil {
			return err
		}
		return c.SetLevel(v)
	}

	c.mu.Lock()
	if c.intensity == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no intensity", ErrUnsupportedAction, c.dev.Name)
	}
	cmd, err := c.intensity.gesture(action)
	if cmd != nil {
		c.syncSwitchLocked()
	}
	c.mu.Unlock()
	if err != nil || cmd == nil {
		return err
	}
	return sendAll(c.sender, []protocol.Command{*cmd})
}

// Close releases the store subscription.
func (c *LightControl) Close() {
	c.projector.Close()
}

func (c *LightControl) syncSwitchLocked() {
	c.on = c.intensity.value > 0
}

func (c *LightControl) observe(p device.Projection, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.track.prime(initial) {
		return
	}

	if c.intensity != nil {
		if e, ok := c.track.pending(p, feedback.KindUShort, c.intensity.id); ok && c.intensity.observe(e.Value) {
			c.track.apply(e)
			c.syncSwitchLocked()
		}
	}
	if id, ok := c.dev.Commands.ID(feedback.KindDigital, device.OpPowerOn); ok {
		if e, ok := c.track.pending(p, feedback.KindDigital, id); ok {
			c.track.apply(e)
			if b, ok := e.Value.(bool); ok {
				c.on = b
			}
		}
	}
	if id, ok := c.dev.Commands.ID(feedback.KindDigital, device.OpPowerOff); ok {
		if e, ok := c.track.pending(p, feedback.KindDigital, id); ok {
			c.track.apply(e)
			if b, ok := e.Value.(bool); ok {
				c.on = !b
			}
		}
	}
}
