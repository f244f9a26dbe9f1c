package protocol

import (
	"fmt"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// Wire type names.
const (
	WireBoolean = "boolean"
	WireUShort  = "ushort"
	WireString  = "string"
)

// WireType returns the wire "type" value for a kind.
func WireType(kind feedback.Kind) (string, error) {
	switch kind {
	case feedback.KindDigital:
		return WireBoolean, nil
	case feedback.KindUShort:
		return WireUShort, nil
	case feedback.KindString:
		return WireString, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidCommand, kind)
	}
}

// KindFromWire maps a wire "type" value to a kind.
func KindFromWire(wireType string) (feedback.Kind, error) {
	switch wireType {
	case WireBoolean:
		return feedback.KindDigital, nil
	case WireUShort:
		return feedback.KindUShort, nil
	case WireString:
		return feedback.KindString, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, wireType)
	}
}
