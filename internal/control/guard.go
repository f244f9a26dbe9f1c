package control

import "sync"

// Guard is the per-control manipulation flag that suppresses feedback while
// the user adjusts a value. It has no timeout: only End clears it.
//
// The zero value is an inactive guard.
type Guard struct {
	mu     sync.Mutex
	active bool
	pre    any
	hasPre bool
}

// Begin marks the start of a gesture and records the value displayed before
// it. Calling Begin during a gesture keeps the original pre-manipulation
// value.
func (g *Guard) Begin(current any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return
	}
	g.active = true
	g.pre = current
	g.hasPre = true
}

// End marks the end of the gesture.
func (g *Guard) End() {
	g.mu.Lock()
	g.active = false
	g.mu.Unlock()
}

// Active reports whether a gesture is in progress.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// PreManipulationValue returns the value captured by the most recent Begin.
func (g *Guard) PreManipulationValue() (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pre, g.hasPre
}
