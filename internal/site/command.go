package site

import (
	"fmt"

	"github.com/nerrad567/gray-logic-remote/internal/control"
)

// Command addresses one device of the active zone. Exactly one of Op and
// Action is set.
//
// An Op is resolved through the device's command table and sent as is. An
// Action goes through the device's control, updating its local state.
type Command struct {
	Op     string `json:"op,omitempty"`
	Action string `json:"action,omitempty"`
	// Target selects the slider of a multi-slider control for Action.
	Target string `json:"target,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// Execute runs cmd against device key of the active zone. A command that
// could not be sent returns an error wrapping control.ErrNotSent.
func (s *Session) Execute(key string, cmd Command) error {
	switch {
	case cmd.Action != "" && cmd.Op != "":
		return fmt.Errorf("%w: op and action are exclusive", ErrInvalidCommand)
	case cmd.Action != "":
		c, err := s.Control(key)
		if err != nil {
			return err
		}
		action := control.Action{Name: cmd.Action, Op: cmd.Target}
		if cmd.Value != nil {
			v, ok := cmd.Value.(float64)
			if !ok {
				return fmt.Errorf("%w: action value must be a number", ErrInvalidCommand)
			}
			action.Value = &v
		}
		return c.Handle(action)
	case cmd.Op != "":
		dev, err := s.Device(key)
		if err != nil {
			return err
		}
		wire, err := control.Resolve(dev, cmd.Op, cmd.Value)
		if err != nil {
			return err
		}
		if !s.SendCommand(wire) {
			return fmt.Errorf("%w: %s %s", control.ErrNotSent, dev.Slug, cmd.Op)
		}
		s.log().Debug("command sent", "device", dev.Slug, "op", cmd.Op)
		return nil
	default:
		return fmt.Errorf("%w: missing op or action", ErrInvalidCommand)
	}
}
