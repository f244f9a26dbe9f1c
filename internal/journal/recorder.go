package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Appender persists a batch of entries. *Repository satisfies it.
type Appender interface {
	Append(ctx context.Context, source string, entries []feedback.Entry) error
}

// Pruner removes old records. *Repository satisfies it.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

const (
	defaultQueueSize     = 256
	defaultPruneInterval = time.Hour
	writeTimeout         = 5 * time.Second
)

// SourceUnknown tags entries recorded before any zone was selected.
const SourceUnknown = "unknown"

type batch struct {
	source  string
	entries []feedback.Entry
}

// Recorder copies store changes into the journal on its own goroutine so
// the store's notification path never waits on disk.
type Recorder struct {
	repo   Appender
	pruner Pruner
	queue  chan batch

	retention     time.Duration
	pruneInterval time.Duration

	mu     sync.RWMutex
	source string
	logger Logger

	dropped atomic.Uint64
	written atomic.Uint64
}

// NewRecorder creates a recorder writing through repo. A queueSize <= 0
// uses the default.
func NewRecorder(repo Appender, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Recorder{
		repo:          repo,
		queue:         make(chan batch, queueSize),
		pruneInterval: defaultPruneInterval,
		source:        SourceUnknown,
		logger:        noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// SetRetention makes Run prune records older than retention once an hour.
// Zero disables pruning.
func (r *Recorder) SetRetention(pruner Pruner, retention time.Duration) {
	r.pruner = pruner
	r.retention = retention
}

// SetSource tags subsequent entries, typically with the active zone slug.
func (r *Recorder) SetSource(source string) {
	if source == "" {
		source = SourceUnknown
	}
	r.mu.Lock()
	r.source = source
	r.mu.Unlock()
}

// Attach starts journalling the changes of store. Clears are not recorded.
func (r *Recorder) Attach(store *feedback.Store) (detach func()) {
	return store.Watch(r.observe)
}

func (r *Recorder) observe(change feedback.Change) {
	if change.Cleared || len(change.Entries) == 0 {
		return
	}
	r.mu.RLock()
	b := batch{source: r.source, entries: change.Entries}
	logger := r.logger
	r.mu.RUnlock()

	select {
	case r.queue <- b:
	default:
		if r.dropped.Add(uint64(len(b.entries))) == uint64(len(b.entries)) {
			logger.Warn("journal queue full, dropping feedback", "entries", len(b.entries))
		}
	}
}

// Run writes queued batches until ctx is cancelled, then drains the queue.
func (r *Recorder) Run(ctx context.Context) {
	var pruneC <-chan time.Time
	if r.pruner != nil && r.retention > 0 {
		ticker := time.NewTicker(r.pruneInterval)
		defer ticker.Stop()
		pruneC = ticker.C
		r.prune(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case b := <-r.queue:
			r.write(ctx, b)
		case <-pruneC:
			r.prune(ctx)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case b := <-r.queue:
			r.write(context.Background(), b)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, b batch) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := r.repo.Append(ctx, b.source, b.entries); err != nil {
		r.log().Error("journal write failed", "source", b.source, "entries", len(b.entries), "error", err)
		return
	}
	r.written.Add(uint64(len(b.entries)))
}

func (r *Recorder) prune(ctx context.Context) {
	n, err := r.pruner.Prune(ctx, r.retention)
	if err != nil {
		r.log().Error("journal prune failed", "error", err)
		return
	}
	if n > 0 {
		r.log().Info("journal pruned", "rows", n, "retention", r.retention.String())
	}
}

// Stats returns the number of entries written and dropped so far.
func (r *Recorder) Stats() (written, dropped uint64) {
	return r.written.Load(), r.dropped.Load()
}

func (r *Recorder) log() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}
