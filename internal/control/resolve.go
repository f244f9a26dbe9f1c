package control

import (
	"fmt"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Resolve turns a named operation of dev into a wire command. Digital
// operations ignore value; ushort operations need a number and string
// operations need a string.
func Resolve(dev device.Device, op string, value any) (protocol.Command, error) {
	kind, id, ok := dev.Commands.Lookup(op)
	if !ok {
		return protocol.Command{}, fmt.Errorf("%w: %s has no %q", device.ErrUnknownOperation, dev.Name, op)
	}

	switch kind {
	case feedback.KindDigital:
		return protocol.Digital(id), nil
	case feedback.KindUShort:
		if value == nil {
			return protocol.Command{}, fmt.Errorf("%w: %s requires a value", ErrMissingValue, op)
		}
		f, ok := toFloat(value)
		if !ok {
			return protocol.Command{}, fmt.Errorf("%w: %s expects a number, got %T", ErrInvalidValue, op, value)
		}
		return protocol.UShort(id, f), nil
	default:
		if value == nil {
			return protocol.Command{}, fmt.Errorf("%w: %s requires a value", ErrMissingValue, op)
		}
		s, ok := value.(string)
		if !ok {
			return protocol.Command{}, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, op, value)
		}
		return protocol.String(id, s), nil
	}
}
