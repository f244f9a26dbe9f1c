package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// decodeJSON unmarshals an encoded command into a generic map.
func decodeJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("encoded message is not JSON: %v", err)
	}
	return out
}

func TestEncode_DigitalAlwaysTrue(t *testing.T) {
	for _, value := range []any{nil, false, true, 0, "off"} {
		data, err := Encode(Command{Kind: feedback.KindDigital, ID: 20, Value: value})
		if err != nil {
			t.Fatalf("Encode(digital, %v) error = %v", value, err)
		}
		got := decodeJSON(t, data)
		if got["type"] != "boolean" || got["value"] != true {
			t.Errorf("Encode(digital, %v) = %s", value, data)
		}
		if got["action"] != "action_command" || got["id"] != float64(20) {
			t.Errorf("Encode(digital, %v) = %s", value, data)
		}
	}
}

func TestEncode_ValueKinds(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		wantType string
		want     any
	}{
		{"ushort int", UShort(10, 75), "ushort", float64(75)},
		{"ushort float", UShort(12, 22.5), "ushort", 22.5},
		{"string", String(30, "radio"), "string", "radio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.cmd)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got := decodeJSON(t, data)
			if got["type"] != tt.wantType || got["value"] != tt.want {
				t.Errorf("Encode() = %s", data)
			}
		})
	}
}

func TestEncode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"zero id", Digital(0)},
		{"negative id", UShort(-1, 1)},
		{"unknown kind", Command{Kind: 0, ID: 1}},
		{"ushort text", UShort(1, "high")},
		{"ushort negative", UShort(1, -5)},
		{"ushort overflow", UShort(1, 70000)},
		{"string number", Command{Kind: feedback.KindString, ID: 1, Value: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.cmd); !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Encode() error = %v, want ErrInvalidCommand", err)
			}
		})
	}
}

func TestDecode_Snapshot(t *testing.T) {
	msg, err := Decode([]byte(`{"action":"action_onopen","type":"boolean","feedback":{"1":false,"2":true}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !msg.IsSnapshot() || msg.Kind != feedback.KindDigital {
		t.Fatalf("Decode() = %+v", msg)
	}
	if msg.Snapshot[1] != false || msg.Snapshot[2] != true || len(msg.Snapshot) != 2 {
		t.Errorf("snapshot = %v", msg.Snapshot)
	}
}

func TestDecode_SnapshotSkipsBadKeys(t *testing.T) {
	msg, err := Decode([]byte(`{"action":"action_onopen","type":"ushort","feedback":{"10":75,"abc":1,"0":3}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(msg.Snapshot) != 1 || msg.Snapshot[10] != 75 {
		t.Errorf("snapshot = %v", msg.Snapshot)
	}
	if len(msg.Skipped) != 2 || msg.Skipped[0] != "0" || msg.Skipped[1] != "abc" {
		t.Errorf("skipped = %v", msg.Skipped)
	}
}

func TestDecode_Incremental(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind feedback.Kind
		wantID   int
		want     any
	}{
		{"ushort", `{"action":"action_feedback","id":10,"type":"ushort","value":75}`, feedback.KindUShort, 10, 75},
		{"ushort fractional", `{"action":"action_feedback","id":12,"type":"ushort","value":21.5}`, feedback.KindUShort, 12, 21.5},
		{"boolean", `{"action":"action_feedback","id":19,"type":"boolean","value":true}`, feedback.KindDigital, 19, true},
		{"string", `{"action":"action_feedback","id":30,"type":"string","value":"FM 101.1"}`, feedback.KindString, 30, "FM 101.1"},
		{"string id", `{"action":"action_feedback","id":"31","type":"string","value":""}`, feedback.KindString, 31, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if msg.IsSnapshot() || msg.Kind != tt.wantKind || msg.ID != tt.wantID || msg.Value != tt.want {
				t.Errorf("Decode() = %+v", msg)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `not json`, ErrMalformed},
		{"truncated", `{"action":"action_feedback"`, ErrMalformed},
		{"missing action", `{"type":"ushort","id":1,"value":1}`, ErrMalformed},
		{"unknown action", `{"action":"action_ping","type":"ushort"}`, ErrUnknownAction},
		{"unknown type", `{"action":"action_feedback","id":1,"type":"float","value":1}`, ErrUnknownType},
		{"digital is not a wire type", `{"action":"action_feedback","id":1,"type":"digital","value":true}`, ErrUnknownType},
		{"missing id", `{"action":"action_feedback","type":"ushort","value":1}`, ErrMalformed},
		{"bad id", `{"action":"action_feedback","id":-3,"type":"ushort","value":1}`, ErrMalformed},
		{"missing value", `{"action":"action_feedback","id":1,"type":"ushort"}`, ErrMalformed},
		{"snapshot without feedback", `{"action":"action_onopen","type":"ushort"}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("Decode() error = %v does not wrap ErrProtocol", err)
			}
		})
	}
}

func TestIngest_WritesStore(t *testing.T) {
	store := feedback.NewStore()
	notifications := 0
	store.Subscribe(func() { notifications++ })

	if _, err := Ingest([]byte(`{"action":"action_onopen","type":"boolean","feedback":{"1":false,"2":true}}`), store); err != nil {
		t.Fatalf("Ingest(snapshot) error = %v", err)
	}
	if notifications != 1 {
		t.Errorf("snapshot notifications = %d, want 1", notifications)
	}
	one, _ := store.Get(feedback.KindDigital, 1)
	two, _ := store.Get(feedback.KindDigital, 2)
	if one.Value != false || two.Value != true {
		t.Errorf("digital 1=%v 2=%v", one.Value, two.Value)
	}

	if _, err := Ingest([]byte(`{"action":"action_feedback","id":10,"type":"ushort","value":75}`), store); err != nil {
		t.Fatalf("Ingest(feedback) error = %v", err)
	}
	if got, ok := store.Get(feedback.KindUShort, 10); !ok || got.Value != 75 {
		t.Errorf("ushort 10 = %+v", got)
	}
}

func TestIngest_ErrorLeavesStoreUntouched(t *testing.T) {
	store := feedback.NewStore()
	notifications := 0
	store.Subscribe(func() { notifications++ })

	for _, payload := range []string{`{`, `{"action":"nope"}`, `{"action":"action_feedback","id":1,"type":"x","value":1}`} {
		if _, err := Ingest([]byte(payload), store); err == nil {
			t.Errorf("Ingest(%s) succeeded", payload)
		}
	}
	if notifications != 0 {
		t.Errorf("notifications = %d, want 0", notifications)
	}
}

func TestWireTypeRoundTrip(t *testing.T) {
	for _, kind := range feedback.Kinds() {
		wire, err := WireType(kind)
		if err != nil {
			t.Fatalf("WireType(%v) error = %v", kind, err)
		}
		back, err := KindFromWire(wire)
		if err != nil || back != kind {
			t.Errorf("KindFromWire(%q) = %v, %v; want %v", wire, back, err, kind)
		}
	}
}
