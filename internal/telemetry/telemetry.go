// Package telemetry exports numeric feedback to a time-series database.
//
// Every digital and ushort entry written to the feedback store becomes one
// "feedback" point tagged with kind, id and zone. Digital values are written
// as 0 or 1. String feedback is not exported.
package telemetry

import (
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// Measurement is the point name used for feedback values.
const Measurement = "feedback"

// PointWriter queues a point. *influxdb.Client satisfies it.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time)
}

// Recorder converts store changes into points.
type Recorder struct {
	writer PointWriter

	mu   sync.RWMutex
	zone string
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w PointWriter) *Recorder {
	return &Recorder{writer: w}
}

// SetZone tags subsequent points with zone. Empty removes the tag.
func (r *Recorder) SetZone(zone string) {
	r.mu.Lock()
	r.zone = zone
	r.mu.Unlock()
}

// Attach starts exporting the changes of store.
func (r *Recorder) Attach(store *feedback.Store) (detach func()) {
	return store.Watch(r.Record)
}

// Record writes one point per numeric entry of change. The writer queues
// points without blocking, so Record is safe on the notification path.
func (r *Recorder) Record(change feedback.Change) {
	if change.Cleared {
		return
	}
	r.mu.RLock()
	zone := r.zone
	r.mu.RUnlock()

	for _, e := range change.Entries {
		v, ok := numeric(e.Value)
		if !ok {
			continue
		}
		tags := map[string]string{
			"kind": e.Kind.String(),
			"id":   strconv.Itoa(e.ID),
		}
		if zone != "" {
			tags["zone"] = zone
		}
		r.writer.WritePoint(Measurement, tags, map[string]any{"value": v}, e.Timestamp)
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint16:
		return float64(n), true
	default:
		return 0, false
	}
}
