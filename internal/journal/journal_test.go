package journal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-remote/migrations"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewRepository(db.DB)
}

func entry(kind feedback.Kind, id int, value any, at time.Time) feedback.Entry {
	return feedback.Entry{Kind: kind, ID: id, Value: value, Timestamp: at}
}

func TestRepositoryHistoryNewestFirst(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	for i, v := range []float64{10, 20, 30} {
		e := entry(feedback.KindUShort, 4, v, base.Add(time.Duration(i)*time.Second))
		if err := repo.Append(ctx, "salon", []feedback.Entry{e}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	// Same id, other kind: must not appear.
	if err := repo.Append(ctx, "salon", []feedback.Entry{entry(feedback.KindDigital, 4, true, base)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records, err := repo.History(ctx, feedback.KindUShort, 4, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	want := []float64{30, 20, 10}
	for i, rec := range records {
		if rec.Value != want[i] {
			t.Errorf("records[%d].Value = %v, want %v", i, rec.Value, want[i])
		}
		if rec.Source != "salon" {
			t.Errorf("records[%d].Source = %q", i, rec.Source)
		}
		if rec.Kind != feedback.KindUShort || rec.ID != 4 {
			t.Errorf("records[%d] key = %s %d", i, rec.Kind, rec.ID)
		}
	}
}

func TestRepositoryValueTypes(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Now()

	err := repo.Append(ctx, "z", []feedback.Entry{
		entry(feedback.KindDigital, 1, true, now),
		entry(feedback.KindString, 2, "Radio 1", now),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	tests := []struct {
		kind feedback.Kind
		id   int
		want any
	}{
		{feedback.KindDigital, 1, true},
		{feedback.KindString, 2, "Radio 1"},
	}
	for _, tt := range tests {
		records, err := repo.History(ctx, tt.kind, tt.id, 1)
		if err != nil {
			t.Fatalf("History(%s, %d) error = %v", tt.kind, tt.id, err)
		}
		if len(records) != 1 || records[0].Value != tt.want {
			t.Errorf("History(%s, %d) = %+v, want value %v", tt.kind, tt.id, records, tt.want)
		}
	}
}

func TestRepositoryHistoryInvalidKey(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	if _, err := repo.History(ctx, feedback.Kind(0), 1, 10); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("invalid kind error = %v, want ErrInvalidKey", err)
	}
	if _, err := repo.History(ctx, feedback.KindDigital, 0, 10); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("zero id error = %v, want ErrInvalidKey", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, DefaultHistoryLimit},
		{0, DefaultHistoryLimit},
		{10, 10},
		{MaxHistoryLimit, MaxHistoryLimit},
		{MaxHistoryLimit + 1, MaxHistoryLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRepositoryHistoryLimitCapped(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Now()

	entries := make([]feedback.Entry, MaxHistoryLimit+20)
	for i := range entries {
		entries[i] = entry(feedback.KindUShort, 9, float64(i), now.Add(time.Duration(i)*time.Millisecond))
	}
	if err := repo.Append(ctx, "z", entries); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records, err := repo.History(ctx, feedback.KindUShort, 9, 1000)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != MaxHistoryLimit {
		t.Errorf("len = %d, want %d", len(records), MaxHistoryLimit)
	}
}

func TestRepositoryPrune(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Now()

	err := repo.Append(ctx, "z", []feedback.Entry{
		entry(feedback.KindDigital, 1, true, now.Add(-48*time.Hour)),
		entry(feedback.KindDigital, 1, false, now.Add(-time.Minute)),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	records, _ := repo.History(ctx, feedback.KindDigital, 1, 0) //nolint:errcheck // checked via len
	if len(records) != 1 || records[0].Value != false {
		t.Errorf("remaining = %+v", records)
	}

	if _, err := repo.Prune(ctx, 0); !errors.Is(err, ErrInvalidRetention) {
		t.Errorf("Prune(0) error = %v, want ErrInvalidRetention", err)
	}
}

func TestRecorderJournalsStoreChanges(t *testing.T) {
	repo := setupRepository(t)
	store := feedback.NewStore()
	rec := NewRecorder(repo, 0)
	rec.SetSource("salon")
	detach := rec.Attach(store)
	defer detach()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	if err := store.BatchUpdate(feedback.KindDigital, map[int]any{1: true, 2: false}); err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}
	store.Clear()
	if err := store.Update(feedback.KindUShort, 4, 75.0); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	cancel()
	<-done

	written, dropped := rec.Stats()
	if written != 3 || dropped != 0 {
		t.Errorf("Stats() = (%d, %d), want (3, 0)", written, dropped)
	}

	records, err := repo.History(context.Background(), feedback.KindUShort, 4, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 1 || records[0].Value != 75.0 || records[0].Source != "salon" {
		t.Errorf("History() = %+v", records)
	}
}

type blockingAppender struct {
	mu      sync.Mutex
	release chan struct{}
	calls   int
}

func (b *blockingAppender) Append(ctx context.Context, _ string, _ []feedback.Entry) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return nil
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	store := feedback.NewStore()
	app := &blockingAppender{release: make(chan struct{})}
	rec := NewRecorder(app, 1)
	rec.Attach(store)

	// Nothing consumes the queue: the second update overflows it.
	for i := 1; i <= 3; i++ {
		if err := store.Update(feedback.KindDigital, i, true); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	if _, dropped := rec.Stats(); dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	close(app.release)
}

func TestRecorderSetSourceDefault(t *testing.T) {
	rec := NewRecorder(&blockingAppender{}, 1)
	rec.SetSource("")
	if rec.source != SourceUnknown {
		t.Errorf("source = %q, want %q", rec.source, SourceUnknown)
	}
}
