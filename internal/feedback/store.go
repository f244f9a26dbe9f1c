package feedback

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Store.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Entry is the last value received from the remote source for one (Kind, id).
//
// Entries are values: the store never mutates one in place, it replaces it.
type Entry struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`

	// Seq increases with every write, so it tells two writes of the same
	// value apart. Entries written by one BatchUpdate share it.
	Seq uint64 `json:"seq"`
}

// Change describes the mutation a notification reports.
type Change struct {
	// Kind is the kind written. Zero when Cleared is true.
	Kind Kind

	// Entries holds the written entries ordered by id. Empty for a clear.
	Entries []Entry

	// Cleared is true when the notification reports Clear.
	Cleared bool
}

// subscriber holds one registered callback. Exactly one field is set.
type subscriber struct {
	id       uint64
	onNotify func()
	onChange func(Change)
}

// Store is the keyed, kind-partitioned feedback container.
//
// Create one with NewStore at startup and pass it to every component that
// needs it. Call Clear whenever the active zone changes.
type Store struct {
	// writeMu serialises mutation and notification so each write is
	// reported before the next one begins.
	writeMu sync.Mutex

	mu      sync.RWMutex
	entries [kindCount]map[int]Entry
	last    time.Time
	seq     uint64

	subMu   sync.Mutex
	subs    []subscriber
	nextSub uint64

	logger Logger
	now    func() time.Time
}

// NewStore creates an empty feedback store.
func NewStore() *Store {
	s := &Store{
		logger: noopLogger{},
		now:    time.Now,
	}
	s.reset()
	return s
}

// SetLogger sets the logger used to report subscriber failures.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// reset replaces every per-kind map. Callers must hold mu or own s exclusively.
func (s *Store) reset() {
	for i := range s.entries {
		s.entries[i] = make(map[int]Entry)
	}
}

// timestamp returns the current time, never earlier than a previously
// issued timestamp. Callers must hold mu.
func (s *Store) timestamp() time.Time {
	ts := s.now()
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts
	return ts
}

// Update writes one entry with a fresh timestamp and notifies subscribers.
//
// Returns:
//   - error: ErrUnknownKind if kind is not valid (nothing is written)
func (s *Store) Update(kind Kind, id int, value any) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.seq++
	entry := Entry{ID: id, Kind: kind, Value: value, Timestamp: s.timestamp(), Seq: s.seq}
	s.entries[kind.index()][id] = entry
	s.mu.Unlock()

	s.notify(Change{Kind: kind, Entries: []Entry{entry}})
	return nil
}

// BatchUpdate writes every entry in values under one shared timestamp and
// notifies subscribers once for the whole batch.
//
// An empty batch still notifies, so a snapshot carrying no ids is observable.
//
// Returns:
//   - error: ErrUnknownKind if kind is not valid (nothing is written)
func (s *Store) BatchUpdate(kind Kind, values map[int]any) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	ts := s.timestamp()
	s.seq++
	written := make([]Entry, 0, len(values))
	for id, value := range values {
		entry := Entry{ID: id, Kind: kind, Value: value, Timestamp: ts, Seq: s.seq}
		s.entries[kind.index()][id] = entry
		written = append(written, entry)
	}
	s.mu.Unlock()

	sort.Slice(written, func(i, j int) bool { return written[i].ID < written[j].ID })
	s.notify(Change{Kind: kind, Entries: written})
	return nil
}

// Clear empties all three kind maps and notifies subscribers once.
func (s *Store) Clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	s.notify(Change{Cleared: true})
}

// Get returns the current entry for (kind, id).
// The boolean is false when no entry exists or kind is not valid.
func (s *Store) Get(kind Kind, id int) (Entry, bool) {
	if !kind.Valid() {
		return Entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[kind.index()][id]
	return entry, ok
}

// GetMany returns the entries present for the given ids of one kind.
// Ids without an entry are omitted from the result.
func (s *Store) GetMany(kind Kind, ids []int) map[int]Entry {
	result := make(map[int]Entry, len(ids))
	if !kind.Valid() {
		return result
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range ids {
		if entry, ok := s.entries[kind.index()][id]; ok {
			result[id] = entry
		}
	}
	return result
}

// Len returns the number of entries held for kind.
func (s *Store) Len(kind Kind) int {
	if !kind.Valid() {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[kind.index()])
}

// Snapshot returns a copy of the whole store, keyed by kind then id.
func (s *Store) Snapshot() map[Kind]map[int]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Kind]map[int]Entry, kindCount)
	for _, kind := range Kinds() {
		src := s.entries[kind.index()]
		dst := make(map[int]Entry, len(src))
		for id, entry := range src {
			dst[id] = entry
		}
		out[kind] = dst
	}
	return out
}

// Subscribe registers a callback invoked after every mutation.
//
// Returns:
//   - func(): deregisters the callback; safe to call more than once
func (s *Store) Subscribe(callback func()) (unsubscribe func()) {
	return s.register(subscriber{onNotify: callback})
}

// Watch registers a callback that receives the Change behind each
// notification.
//
// Returns:
//   - func(): deregisters the callback; safe to call more than once
func (s *Store) Watch(callback func(Change)) (unsubscribe func()) {
	return s.register(subscriber{onChange: callback})
}

// SubscriberCount returns the number of registered callbacks.
func (s *Store) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Store) register(sub subscriber) func() {
	s.subMu.Lock()
	s.nextSub++
	sub.id = s.nextSub
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	id := sub.id
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i := range s.subs {
			if s.subs[i].id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify delivers change to a snapshot of the current subscribers.
// Callers must hold writeMu and must not hold mu.
func (s *Store) notify(change Change) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		s.deliver(sub, change)
	}
}

// deliver invokes one subscriber, recovering and logging a panic so the
// remaining subscribers are still notified.
func (s *Store) deliver(sub subscriber, change Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("feedback subscriber panic recovered",
				"subscriber", sub.id,
				"kind", change.Kind.String(),
				"panic", r,
			)
		}
	}()

	if sub.onChange != nil {
		sub.onChange(change)
		return
	}
	sub.onNotify()
}
