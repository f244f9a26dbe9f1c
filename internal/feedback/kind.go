package feedback

import (
	"fmt"
	"strings"
)

// Kind partitions the command id namespace and determines the value type.
type Kind uint8

// Supported kinds. The zero value is not a valid kind.
const (
	// KindDigital is a momentary trigger. Distinct effects (on/off) use
	// distinct ids rather than a boolean value on one id.
	KindDigital Kind = iota + 1

	// KindUShort is a bounded unsigned numeric value (0-65535).
	KindUShort

	// KindString is an opaque text value.
	KindString
)

// kindCount is the number of valid kinds, used to size per-kind tables.
const kindCount = 3

// Kinds returns all valid kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{KindDigital, KindUShort, KindString}
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindDigital:
		return "digital"
	case KindUShort:
		return "ushort"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindDigital && k <= KindString
}

// index maps a valid kind to its slot in a per-kind array.
func (k Kind) index() int {
	return int(k) - 1
}

// ParseKind converts a kind name ("digital", "ushort", "string") to a Kind.
// Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "digital":
		return KindDigital, nil
	case "ushort":
		return KindUShort, nil
	case "string":
		return KindString, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialise by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It also makes Kind
// usable as a map key in JSON and YAML documents.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
