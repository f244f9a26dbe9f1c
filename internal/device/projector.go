package device

import (
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// Source is the read side of the feedback store a projection needs.
type Source interface {
	GetMany(kind feedback.Kind, ids []int) map[int]feedback.Entry
	Subscribe(callback func()) (unsubscribe func())
}

// Projection is the latest entry per command id of one device.
//
// It is keyed by id alone. When a table gives the same id to several kinds
// only the entry of the last kind merged is kept, and Value reports the
// earlier kinds' operations as absent.
type Projection map[int]feedback.Entry

// Value returns the projected value for op under kind.
func (p Projection) Value(table CommandTable, kind feedback.Kind, op string) (any, bool) {
	id, ok := table.ID(kind, op)
	if !ok {
		return nil, false
	}
	e, ok := p[id]
	if !ok || e.Kind != kind {
		return nil, false
	}
	return e.Value, true
}

// Values returns the projected value per id.
func (p Projection) Values() map[int]any {
	out := make(map[int]any, len(p))
	for id, e := range p {
		out[id] = e.Value
	}
	return out
}

// same reports whether p and q hold the same writes for the same ids.
func (p Projection) same(q Projection) bool {
	if len(p) != len(q) {
		return false
	}
	for id, e := range p {
		o, ok := q[id]
		if !ok || o.Seq != e.Seq || o.Kind != e.Kind {
			return false
		}
	}
	return true
}

func (p Projection) clone() Projection {
	out := make(Projection, len(p))
	for id, e := range p {
		out[id] = e
	}
	return out
}

// Project merges the store's current values for every id in table.
// Kinds are merged in the order digital, ushort, string; a later kind
// overwrites an earlier one holding the same id.
func Project(source Source, table CommandTable) Projection {
	projection := make(Projection)
	for _, kind := range feedback.Kinds() {
		ids := table.IDs(kind)
		if len(ids) == 0 {
			continue
		}
		for id, entry := range source.GetMany(kind, ids) {
			projection[id] = entry
		}
	}
	return projection
}

// Projector keeps one device's projection current.
type Projector struct {
	source   Source
	device   Device
	onChange func(Projection)

	// recomputeMu serialises recompute so a slower pass never overwrites a
	// newer projection.
	recomputeMu sync.Mutex

	mu      sync.RWMutex
	current Projection
	closed  bool

	unsubscribe func()
	closeOnce   sync.Once
}

// NewProjector subscribes to source and computes the initial projection.
// onChange, which may be nil, receives every later projection in which an
// entry was written or removed, even when the value is unchanged. Each
// projection passed to onChange is a fresh map.
func NewProjector(source Source, dev Device, onChange func(Projection)) *Projector {
	p := &Projector{
		source:   source,
		device:   dev,
		onChange: onChange,
		current:  Projection{},
	}

	p.recomputeMu.Lock()
	p.unsubscribe = source.Subscribe(p.recompute)
	p.compute()
	p.recomputeMu.Unlock()
	return p
}

// Device returns the projected device.
func (p *Projector) Device() Device {
	return p.device
}

// Current returns a copy of the latest projection.
func (p *Projector) Current() Projection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.clone()
}

// Value returns the latest projected value for op under kind.
func (p *Projector) Value(kind feedback.Kind, op string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Value(p.device.Commands, kind, op)
}

// Close unsubscribes from the store. It is safe to call more than once.
func (p *Projector) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
	})
}

// compute refreshes the projection and reports whether it changed.
func (p *Projector) compute() (Projection, bool) {
	next := Project(p.source, p.device.Commands)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || next.same(p.current) {
		return nil, false
	}
	p.current = next
	return next.clone(), true
}

func (p *Projector) recompute() {
	p.recomputeMu.Lock()
	defer p.recomputeMu.Unlock()

	if projection, changed := p.compute(); changed && p.onChange != nil {
		p.onChange(projection)
	}
}

// ByOp regroups p under the operation names of table, per kind. Operations
// without feedback are omitted.
func (p Projection) ByOp(table CommandTable) map[feedback.Kind]map[string]any {
	out := make(map[feedback.Kind]map[string]any)
	for _, kind := range feedback.Kinds() {
		for _, op := range table.Ops(kind) {
			v, ok := p.Value(table, kind, op)
			if !ok {
				continue
			}
			if out[kind] == nil {
				out[kind] = make(map[string]any)
			}
			out[kind][op] = v
		}
	}
	return out
}
