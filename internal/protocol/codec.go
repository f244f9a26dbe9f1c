package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// Wire actions.
const (
	ActionCommand  = "action_command"
	ActionOnOpen   = "action_onopen"
	ActionFeedback = "action_feedback"
)

// maxUShort is the upper bound of a ushort value.
const maxUShort = math.MaxUint16

// Command is a semantic request toward the remote source.
//
// Value is ignored for digital commands.
type Command struct {
	Kind  feedback.Kind
	ID    int
	Value any
}

// Digital returns a momentary command for id.
func Digital(id int) Command {
	return Command{Kind: feedback.KindDigital, ID: id}
}

// UShort returns a numeric command for id.
func UShort(id int, value any) Command {
	return Command{Kind: feedback.KindUShort, ID: id, Value: value}
}

// String returns a text command for id.
func String(id int, value string) Command {
	return Command{Kind: feedback.KindString, ID: id, Value: value}
}

// commandMessage is the outbound wire shape.
type commandMessage struct {
	Action string `json:"action"`
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Value  any    `json:"value"`
}

// Encode serialises a command to its wire message.
//
// Returns:
//   - []byte: JSON message ready to transmit
//   - error: ErrInvalidCommand if the id, kind or value cannot be encoded
func Encode(cmd Command) ([]byte, error) {
	if cmd.ID <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidCommand, cmd.ID)
	}

	wireType, err := WireType(cmd.Kind)
	if err != nil {
		return nil, err
	}

	msg := commandMessage{
		Action: ActionCommand,
		ID:     cmd.ID,
		Type:   wireType,
	}

	switch cmd.Kind {
	case feedback.KindDigital:
		msg.Value = true
	case feedback.KindUShort:
		if err := checkUShort(cmd.Value); err != nil {
			return nil, err
		}
		msg.Value = cmd.Value
	case feedback.KindString:
		if _, ok := cmd.Value.(string); !ok {
			return nil, fmt.Errorf("%w: string command %d needs a string value, got %T", ErrInvalidCommand, cmd.ID, cmd.Value)
		}
		msg.Value = cmd.Value
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return data, nil
}

// checkUShort verifies v is a number within [0, 65535].
func checkUShort(v any) error {
	f, ok := toFloat(v)
	if !ok {
		return fmt.Errorf("%w: ushort value must be numeric, got %T", ErrInvalidCommand, v)
	}
	if f < 0 || f > maxUShort || math.IsNaN(f) {
		return fmt.Errorf("%w: ushort value %v out of range 0-%d", ErrInvalidCommand, v, maxUShort)
	}
	return nil
}

// toFloat converts Go numeric types to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Message is a decoded inbound feedback message.
type Message struct {
	// Action is ActionOnOpen or ActionFeedback.
	Action string

	// Kind is the internal kind the message writes.
	Kind feedback.Kind

	// ID and Value are set for ActionFeedback.
	ID    int
	Value any

	// Snapshot is set for ActionOnOpen: every id/value pair of the kind.
	Snapshot map[int]any

	// Skipped lists snapshot keys that were not positive integer ids.
	Skipped []string
}

// IsSnapshot reports whether the message is an action_onopen snapshot.
func (m Message) IsSnapshot() bool {
	return m.Action == ActionOnOpen
}

// inboundMessage is the union of both inbound wire shapes.
type inboundMessage struct {
	Action   string                     `json:"action"`
	Type     string                     `json:"type"`
	ID       json.RawMessage            `json:"id"`
	Value    json.RawMessage            `json:"value"`
	Feedback map[string]json.RawMessage `json:"feedback"`
}

// Decode parses one inbound wire message.
//
// Returns:
//   - Message: decoded message
//   - error: ErrMalformed, ErrUnknownAction or ErrUnknownType (all wrap ErrProtocol)
func Decode(data []byte) (Message, error) {
	var in inboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch in.Action {
	case ActionOnOpen, ActionFeedback:
	case "":
		return Message{}, fmt.Errorf("%w: missing action", ErrMalformed)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownAction, in.Action)
	}

	kind, err := KindFromWire(in.Type)
	if err != nil {
		return Message{}, err
	}

	if in.Action == ActionOnOpen {
		return decodeSnapshot(kind, in)
	}
	return decodeIncremental(kind, in)
}

func decodeSnapshot(kind feedback.Kind, in inboundMessage) (Message, error) {
	if in.Feedback == nil {
		return Message{}, fmt.Errorf("%w: action_onopen without feedback", ErrMalformed)
	}

	msg := Message{
		Action:   ActionOnOpen,
		Kind:     kind,
		Snapshot: make(map[int]any, len(in.Feedback)),
	}
	for key, raw := range in.Feedback {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id <= 0 {
			msg.Skipped = append(msg.Skipped, key)
			continue
		}
		value, err := decodeValue(raw)
		if err != nil {
			return Message{}, fmt.Errorf("%w: feedback %q: %w", ErrMalformed, key, err)
		}
		msg.Snapshot[id] = value
	}
	sort.Strings(msg.Skipped)
	return msg, nil
}

func decodeIncremental(kind feedback.Kind, in inboundMessage) (Message, error) {
	id, err := decodeID(in.ID)
	if err != nil {
		return Message{}, err
	}
	if len(in.Value) == 0 {
		return Message{}, fmt.Errorf("%w: action_feedback without value", ErrMalformed)
	}
	value, err := decodeValue(in.Value)
	if err != nil {
		return Message{}, fmt.Errorf("%w: value: %w", ErrMalformed, err)
	}

	return Message{
		Action: ActionFeedback,
		Kind:   kind,
		ID:     id,
		Value:  value,
	}, nil
}

// decodeID accepts a JSON number or a numeric string.
func decodeID(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: action_feedback without id", ErrMalformed)
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrMalformed, err)
	}
	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("%w: id must be a number, got %s", ErrMalformed, string(raw))
	}

	id64, err := num.Int64()
	if err != nil || id64 <= 0 || id64 > math.MaxInt32 {
		return 0, fmt.Errorf("%w: invalid id %s", ErrMalformed, string(raw))
	}
	return int(id64), nil
}

// decodeValue decodes a JSON value, turning integral numbers into int and
// other numbers into float64.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normaliseValue(v), nil
}

func normaliseValue(v any) any {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(string(num), 10, 0); err == nil {
		return int(i)
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return string(num)
}

// Sink receives decoded feedback. *feedback.Store satisfies it.
type Sink interface {
	Update(kind feedback.Kind, id int, value any) error
	BatchUpdate(kind feedback.Kind, values map[int]any) error
}

// Apply writes a decoded message into sink: one batch for a snapshot, one
// update for an incremental message.
func Apply(msg Message, sink Sink) error {
	switch msg.Action {
	case ActionOnOpen:
		return sink.BatchUpdate(msg.Kind, msg.Snapshot)
	case ActionFeedback:
		return sink.Update(msg.Kind, msg.ID, msg.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
}

// Ingest decodes data and applies it to sink in one step.
//
// Returns:
//   - Message: the decoded message (zero on error)
//   - error: a protocol error; the sink is untouched when non-nil
func Ingest(data []byte, sink Sink) (Message, error) {
	msg, err := Decode(data)
	if err != nil {
		return Message{}, err
	}
	if err := Apply(msg, sink); err != nil {
		return Message{}, err
	}
	return msg, nil
}
