package control

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// LevelControl adjusts one ushort operation of a device.
type LevelControl struct {
	dev       device.Device
	op        string
	sender    Sender
	projector *device.Projector

	mu     sync.Mutex
	slider *slider
	track  tracker
}

// NewLevel creates a control for op, clamped to [lo, hi]. A device without op
// yields a control whose actions return ErrUnsupportedAction.
func NewLevel(source device.Source, dev device.Device, op string, lo, hi float64, sender Sender) *LevelControl {
	c := &LevelControl{
		dev:    dev,
		op:     op,
		sender: sender,
		slider: newSlider(dev.Commands, op, lo, hi, lo),
	}
	c.projector = device.NewProjector(source, dev, func(p device.Projection) { c.observe(p, false) })
	c.observe(c.projector.Current(), true)
	return c
}

// Device returns the controlled device.
func (c *LevelControl) Device() device.Device { return c.dev }

// Guard exposes the manipulation guard, or nil when the op is missing.
func (c *LevelControl) Guard() *Guard {
	if c.slider == nil {
		return nil
	}
	return &c.slider.guard
}

// BeginGesture starts a manipulation.
func (c *LevelControl) BeginGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slider != nil {
		c.slider.begin()
	}
}

// Move sets the value and sends it. Every intermediate value is sent.
func (c *LevelControl) Move(v float64) error {
	c.mu.Lock()
	if c.slider == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no %s", ErrUnsupportedAction, c.dev.Name, c.op)
	}
	cmd := c.slider.move(v)
	c.mu.Unlock()
	return sendAll(c.sender, []protocol.Command{cmd})
}

// EndGesture ends the manipulation. The local value stays until the next
// feedback for the operation.
func (c *LevelControl) EndGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slider != nil {
		c.slider.end()
	}
}

// Value returns the displayed value.
func (c *LevelControl) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slider == nil {
		return 0
	}
	return c.slider.value
}

// State implements Control.
func (c *LevelControl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slider == nil {
		return State{}
	}
	return State{
		c.op:           c.slider.value,
		"manipulating": c.slider.guard.Active(),
	}
}

// Handle accepts set, begin, move and end.
func (c *LevelControl) Handle(action Action) error {
	c.mu.Lock()
	if c.slider == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no %s", ErrUnsupportedAction, c.dev.Name, c.op)
	}
	cmd, err := c.slider.gesture(action)
	c.mu.Unlock()
	if err != nil || cmd == nil {
		return err
	}
	return sendAll(c.sender, []protocol.Command{*cmd})
}

// Close releases the store subscription.
func (c *LevelControl) Close() {
	c.projector.Close()
}

func (c *LevelControl) observe(p device.Projection, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.track.prime(initial) || c.slider == nil {
		return
	}
	if e, ok := c.track.pending(p, feedback.KindUShort, c.slider.id); ok && c.slider.observe(e.Value) {
		c.track.apply(e)
	}
}
