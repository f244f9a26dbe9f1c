package device

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// CommandTable maps each kind to the device's operation names and their ids.
//
// In YAML and JSON the kinds are written by name:
//
//	commands:
//	  digital: {power_on: 10, power_off: 11}
//	  ushort:  {intensity: 12}
type CommandTable map[feedback.Kind]map[string]int

// ID returns the command id for op under kind.
func (t CommandTable) ID(kind feedback.Kind, op string) (int, bool) {
	id, ok := t[kind][op]
	return id, ok
}

// Has reports whether the table defines op under kind.
func (t CommandTable) Has(kind feedback.Kind, op string) bool {
	_, ok := t.ID(kind, op)
	return ok
}

// IDs returns the distinct ids of kind in ascending order.
func (t CommandTable) IDs(kind feedback.Kind) []int {
	seen := make(map[int]struct{}, len(t[kind]))
	ids := make([]int, 0, len(t[kind]))
	for _, id := range t[kind] {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Ops returns the operation names of kind in sorted order.
func (t CommandTable) Ops(kind feedback.Kind) []string {
	ops := make([]string, 0, len(t[kind]))
	for op := range t[kind] {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Lookup finds op under any kind, trying digital, ushort then string.
func (t CommandTable) Lookup(op string) (feedback.Kind, int, bool) {
	for _, kind := range feedback.Kinds() {
		if id, ok := t.ID(kind, op); ok {
			return kind, id, true
		}
	}
	return 0, 0, false
}

// Validate checks that every kind is known, every op is named and every id
// is positive.
func (t CommandTable) Validate() error {
	for kind, ops := range t {
		if !kind.Valid() {
			return fmt.Errorf("%w: %w", ErrInvalidCommands, feedback.ErrUnknownKind)
		}
		for op, id := range ops {
			if op == "" {
				return fmt.Errorf("%w: empty operation name under %s", ErrInvalidCommands, kind)
			}
			if id <= 0 {
				return fmt.Errorf("%w: %s.%s has id %d, must be positive", ErrInvalidCommands, kind, op, id)
			}
		}
	}
	return nil
}

// UnmarshalYAML decodes a table keyed by kind name.
func (t *CommandTable) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]map[string]int
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommands, err)
	}
	return t.fromNames(raw)
}

// UnmarshalJSON decodes a table keyed by kind name.
func (t *CommandTable) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommands, err)
	}
	return t.fromNames(raw)
}

func (t *CommandTable) fromNames(raw map[string]map[string]int) error {
	table := make(CommandTable, len(raw))
	for name, ops := range raw {
		kind, err := feedback.ParseKind(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCommands, err)
		}
		copied := make(map[string]int, len(ops))
		for op, id := range ops {
			copied[op] = id
		}
		table[kind] = copied
	}
	if err := table.Validate(); err != nil {
		return err
	}
	*t = table
	return nil
}
