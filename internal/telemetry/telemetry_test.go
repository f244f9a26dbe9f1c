package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

type point struct {
	measurement string
	tags        map[string]string
	value       any
	ts          time.Time
}

type recordingWriter struct {
	mu     sync.Mutex
	points []point
}

func (w *recordingWriter) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, point{measurement: measurement, tags: tags, value: fields["value"], ts: ts})
}

func TestRecorderWritesNumericFeedback(t *testing.T) {
	store := feedback.NewStore()
	w := &recordingWriter{}
	rec := NewRecorder(w)
	rec.SetZone("salon")
	detach := rec.Attach(store)
	defer detach()

	if err := store.BatchUpdate(feedback.KindDigital, map[int]any{1: true, 2: false}); err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}
	if err := store.Update(feedback.KindUShort, 4, 42.5); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := store.Update(feedback.KindString, 7, "Radio 1"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	store.Clear()

	want := []struct {
		kind, id string
		value    float64
	}{
		{"digital", "1", 1},
		{"digital", "2", 0},
		{"ushort", "4", 42.5},
	}
	if len(w.points) != len(want) {
		t.Fatalf("points = %d, want %d: %+v", len(w.points), len(want), w.points)
	}
	for i, p := range w.points {
		if p.measurement != Measurement {
			t.Errorf("points[%d].measurement = %q", i, p.measurement)
		}
		if p.tags["kind"] != want[i].kind || p.tags["id"] != want[i].id || p.tags["zone"] != "salon" {
			t.Errorf("points[%d].tags = %v", i, p.tags)
		}
		if p.value != want[i].value {
			t.Errorf("points[%d].value = %v, want %v", i, p.value, want[i].value)
		}
		if p.ts.IsZero() {
			t.Errorf("points[%d] has no timestamp", i)
		}
	}
}

func TestRecorderWithoutZone(t *testing.T) {
	w := &recordingWriter{}
	rec := NewRecorder(w)
	rec.Record(feedback.Change{
		Kind:    feedback.KindUShort,
		Entries: []feedback.Entry{{Kind: feedback.KindUShort, ID: 3, Value: 10.0}},
	})
	if len(w.points) != 1 {
		t.Fatalf("points = %d, want 1", len(w.points))
	}
	if _, ok := w.points[0].tags["zone"]; ok {
		t.Errorf("zone tag present without a zone: %v", w.points[0].tags)
	}
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{true, 1, true},
		{false, 0, true},
		{12.5, 12.5, true},
		{float32(2), 2, true},
		{7, 7, true},
		{int64(8), 8, true},
		{uint16(9), 9, true},
		{"x", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := numeric(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("numeric(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
