package control

import (
	"fmt"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// MomentaryControl presses the digital operations of a device, such as a
// blind's power_up, power_down and stop.
type MomentaryControl struct {
	dev       device.Device
	sender    Sender
	projector *device.Projector
}

// NewMomentary creates a momentary control.
func NewMomentary(source device.Source, dev device.Device, sender Sender) *MomentaryControl {
	return &MomentaryControl{
		dev:       dev,
		sender:    sender,
		projector: device.NewProjector(source, dev, nil),
	}
}

// Device returns the controlled device.
func (c *MomentaryControl) Device() device.Device { return c.dev }

// Press sends the digital command for op.
func (c *MomentaryControl) Press(op string) error {
	id, ok := c.dev.Commands.ID(feedback.KindDigital, op)
	if !ok {
		return fmt.Errorf("%w: %s has no %q", device.ErrUnknownOperation, c.dev.Name, op)
	}
	return sendAll(c.sender, []protocol.Command{protocol.Digital(id)})
}

// State reports the last feedback per digital operation.
func (c *MomentaryControl) State() State {
	projection := c.projector.Current()
	s := State{}
	for _, op := range c.dev.Commands.Ops(feedback.KindDigital) {
		if v, ok := projection.Value(c.dev.Commands, feedback.KindDigital, op); ok {
			s[op] = v
		}
	}
	return s
}

// Handle accepts press with an operation name.
func (c *MomentaryControl) Handle(action Action) error {
	if action.Name != ActionPress {
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, action.Name)
	}
	return c.Press(action.Op)
}

// Close releases the store subscription.
func (c *MomentaryControl) Close() {
	c.projector.Close()
}
