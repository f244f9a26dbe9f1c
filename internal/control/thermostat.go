package control

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Thermostat limits and the value shown before any feedback, in °C.
const (
	MinTargetTemperature = 16
	MaxTargetTemperature = 30
	defaultTemperature   = 22
)

// ThermostatControl adjusts a target temperature and shows the measured one.
type ThermostatControl struct {
	dev       device.Device
	sender    Sender
	projector *device.Projector

	mu      sync.Mutex
	target  *slider
	current float64
	track   tracker
}

// NewThermostat creates a thermostat control.
func NewThermostat(source device.Source, dev device.Device, sender Sender) *ThermostatControl {
	c := &ThermostatControl{
		dev:     dev,
		sender:  sender,
		target:  newSlider(dev.Commands, device.OpTemperature, MinTargetTemperature, MaxTargetTemperature, defaultTemperature),
		current: defaultTemperature,
	}
	c.projector = device.NewProjector(source, dev, func(p device.Projection) { c.observe(p, false) })
	c.observe(c.projector.Current(), true)
	return c
}

// Device returns the controlled device.
func (c *ThermostatControl) Device() device.Device { return c.dev }

// Target returns the displayed target temperature.
func (c *ThermostatControl) Target() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return defaultTemperature
	}
	return c.target.value
}

// Current returns the last measured temperature.
func (c *ThermostatControl) Current() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Nudge moves the target by delta within the allowed range and sends it.
func (c *ThermostatControl) Nudge(delta float64) error {
	c.mu.Lock()
	if c.target == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no temperature", ErrUnsupportedAction, c.dev.Name)
	}
	cmd := c.target.move(c.target.value + delta)
	c.mu.Unlock()
	return sendAll(c.sender, []protocol.Command{cmd})
}

// State implements Control.
func (c *ThermostatControl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{"current_temperature": c.current}
	if c.target != nil {
		s["temperature"] = c.target.value
		s["manipulating"] = c.target.guard.Active()
	}
	return s
}

// Handle accepts nudge, set, begin, move and end.
func (c *ThermostatControl) Handle(action Action) error {
	if action.Name == ActionNudge {
		v, err := action.value()
		if err != nil {
			return err
		}
		return c.Nudge(v)
	}

	c.mu.Lock()
	if c.target == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no temperature", ErrUnsupportedAction, c.dev.Name)
	}
	cmd, err := c.target.gesture(action)
	c.mu.Unlock()
	if err != nil || cmd == nil {
		return err
	}
	return sendAll(c.sender, []protocol.Command{*cmd})
}

// Close releases the store subscription.
func (c *ThermostatControl) Close() {
	c.projector.Close()
}

func (c *ThermostatControl) observe(p device.Projection, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.track.prime(initial) {
		return
	}

	if c.target != nil {
		if e, ok := c.track.pending(p, feedback.KindUShort, c.target.id); ok && c.target.observe(e.Value) {
			c.track.apply(e)
		}
	}
	if id, ok := c.dev.Commands.ID(feedback.KindUShort, device.OpCurrentTemperature); ok {
		if e, ok := c.track.pending(p, feedback.KindUShort, id); ok {
			c.track.apply(e)
			if f, ok := toFloat(e.Value); ok {
				c.current = f
			}
		}
	}
}
