package feedback

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fixedClock returns a clock function that yields the given times in order,
// repeating the last one once exhausted.
func fixedClock(times ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestStore_UpdateThenGet(t *testing.T) {
	store := NewStore()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = fixedClock(ts)

	if err := store.Update(KindUShort, 10, 75); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, ok := store.Get(KindUShort, 10)
	if !ok {
		t.Fatal("expected entry for ushort 10")
	}
	want := Entry{ID: 10, Kind: KindUShort, Value: 75, Timestamp: ts, Seq: 1}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestStore_GetAbsent(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get(KindDigital, 1); ok {
		t.Error("expected no entry in empty store")
	}
	if _, ok := store.Get(Kind(0), 1); ok {
		t.Error("expected no entry for invalid kind")
	}
}

func TestStore_KindsAreIndependent(t *testing.T) {
	store := NewStore()

	store.Update(KindDigital, 5, true)  //nolint:errcheck // valid kind
	store.Update(KindUShort, 5, 42)     //nolint:errcheck // valid kind
	store.Update(KindString, 5, "beep") //nolint:errcheck // valid kind

	tests := []struct {
		kind Kind
		want any
	}{
		{KindDigital, true},
		{KindUShort, 42},
		{KindString, "beep"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, ok := store.Get(tt.kind, 5)
			if !ok {
				t.Fatal("expected entry")
			}
			if got.Value != tt.want {
				t.Errorf("value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestStore_LatestWriteWins(t *testing.T) {
	store := NewStore()

	store.Update(KindUShort, 10, 10)                                 //nolint:errcheck // valid kind
	store.BatchUpdate(KindUShort, map[int]any{10: 20, 11: 30})       //nolint:errcheck // valid kind
	store.Update(KindUShort, 11, 40)                                 //nolint:errcheck // valid kind
	store.BatchUpdate(KindDigital, map[int]any{10: false, 11: true}) //nolint:errcheck // valid kind

	if got, _ := store.Get(KindUShort, 10); got.Value != 20 {
		t.Errorf("ushort 10 = %v, want 20", got.Value)
	}
	if got, _ := store.Get(KindUShort, 11); got.Value != 40 {
		t.Errorf("ushort 11 = %v, want 40", got.Value)
	}
	if got, _ := store.Get(KindDigital, 10); got.Value != false {
		t.Errorf("digital 10 = %v, want false", got.Value)
	}
}

func TestStore_BatchUpdateSharesTimestampAndNotifiesOnce(t *testing.T) {
	store := NewStore()
	calls := 0
	store.Subscribe(func() { calls++ })

	if err := store.BatchUpdate(KindDigital, map[int]any{19: true, 20: false}); err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("notifications = %d, want 1", calls)
	}

	on, ok := store.Get(KindDigital, 19)
	if !ok || on.Value != true {
		t.Errorf("digital 19 = %+v, want true", on)
	}
	off, ok := store.Get(KindDigital, 20)
	if !ok || off.Value != false {
		t.Errorf("digital 20 = %+v, want false", off)
	}
	if !on.Timestamp.Equal(off.Timestamp) {
		t.Errorf("batch timestamps differ: %v vs %v", on.Timestamp, off.Timestamp)
	}
	if on.Seq != off.Seq {
		t.Errorf("batch sequences differ: %d vs %d", on.Seq, off.Seq)
	}
}

func TestStore_EachWriteNotifiesEachSubscriberOnce(t *testing.T) {
	store := NewStore()
	var a, b int
	store.Subscribe(func() { a++ })
	store.Subscribe(func() { b++ })

	store.Update(KindUShort, 1, 1)                                         //nolint:errcheck // valid kind
	store.BatchUpdate(KindUShort, map[int]any{1: 2, 2: 3, 3: 4, 4: 5}) //nolint:errcheck // valid kind
	store.Clear()

	if a != 3 || b != 3 {
		t.Errorf("notifications = (%d, %d), want (3, 3)", a, b)
	}
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	store := NewStore()
	store.Update(KindDigital, 1, true) //nolint:errcheck // valid kind
	store.Update(KindUShort, 2, 3)     //nolint:errcheck // valid kind
	store.Update(KindString, 3, "x")   //nolint:errcheck // valid kind

	var changes []Change
	store.Watch(func(c Change) { changes = append(changes, c) })

	store.Clear()

	for _, k := range []struct {
		kind Kind
		id   int
	}{{KindDigital, 1}, {KindUShort, 2}, {KindString, 3}} {
		if _, ok := store.Get(k.kind, k.id); ok {
			t.Errorf("%s %d still present after Clear", k.kind, k.id)
		}
	}
	if len(changes) != 1 || !changes[0].Cleared {
		t.Errorf("changes = %+v, want one cleared change", changes)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore()
	calls := 0
	unsubscribe := store.Subscribe(func() { calls++ })

	store.Update(KindUShort, 1, 1) //nolint:errcheck // valid kind
	unsubscribe()
	unsubscribe() // idempotent
	store.Update(KindUShort, 1, 2) //nolint:errcheck // valid kind

	if calls != 1 {
		t.Errorf("notifications = %d, want 1", calls)
	}
	if n := store.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", n)
	}
}

func TestStore_SubscribeDuringNotification(t *testing.T) {
	store := NewStore()

	var late int
	var unsubscribeSelf func()
	selfCalls := 0
	others := 0

	unsubscribeSelf = store.Subscribe(func() {
		selfCalls++
		unsubscribeSelf()
		store.Subscribe(func() { late++ })
	})
	store.Subscribe(func() { others++ })

	store.Update(KindDigital, 1, true) //nolint:errcheck // valid kind

	if selfCalls != 1 || others != 1 {
		t.Fatalf("first notification: self=%d others=%d, want 1/1", selfCalls, others)
	}
	if late != 0 {
		t.Errorf("subscriber added during notification was called for that notification")
	}

	store.Update(KindDigital, 1, false) //nolint:errcheck // valid kind

	if selfCalls != 1 {
		t.Errorf("self-unsubscribed callback called again")
	}
	if others != 2 || late != 1 {
		t.Errorf("second notification: others=%d late=%d, want 2/1", others, late)
	}
}

func TestStore_PanickingSubscriberDoesNotStopOthers(t *testing.T) {
	store := NewStore()
	called := false
	store.Subscribe(func() { panic("boom") })
	store.Subscribe(func() { called = true })

	if err := store.Update(KindString, 7, "ok"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !called {
		t.Error("second subscriber not notified after first panicked")
	}
	if got, ok := store.Get(KindString, 7); !ok || got.Value != "ok" {
		t.Error("mutation lost after subscriber panic")
	}
}

func TestStore_NotificationSeesMutation(t *testing.T) {
	store := NewStore()
	var seen any
	store.Subscribe(func() {
		if e, ok := store.Get(KindUShort, 10); ok {
			seen = e.Value
		}
	})

	store.Update(KindUShort, 10, 55) //nolint:errcheck // valid kind

	if seen != 55 {
		t.Errorf("subscriber saw %v, want 55", seen)
	}
}

func TestStore_TimestampsNeverDecrease(t *testing.T) {
	store := NewStore()
	later := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Minute)
	store.now = fixedClock(later, earlier)

	store.Update(KindUShort, 1, 1) //nolint:errcheck // valid kind
	first, _ := store.Get(KindUShort, 1)
	store.Update(KindUShort, 1, 2) //nolint:errcheck // valid kind
	second, _ := store.Get(KindUShort, 1)

	if second.Timestamp.Before(first.Timestamp) {
		t.Errorf("timestamp went backwards: %v then %v", first.Timestamp, second.Timestamp)
	}
}

func TestStore_SeqDistinguishesRepeatedWrites(t *testing.T) {
	store := NewStore()
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = fixedClock(ts, ts, ts)

	store.Update(KindUShort, 12, 40) //nolint:errcheck // valid kind
	first, _ := store.Get(KindUShort, 12)
	store.Update(KindUShort, 12, 40) //nolint:errcheck // valid kind
	second, _ := store.Get(KindUShort, 12)

	if !first.Timestamp.Equal(second.Timestamp) {
		t.Fatalf("clock should be frozen: %v vs %v", first.Timestamp, second.Timestamp)
	}
	if second.Seq <= first.Seq {
		t.Errorf("Seq = %d after %d, want larger", second.Seq, first.Seq)
	}

	store.Clear()
	store.Update(KindUShort, 12, 40) //nolint:errcheck // valid kind
	third, _ := store.Get(KindUShort, 12)
	if third.Seq <= second.Seq {
		t.Errorf("Seq after Clear = %d, want larger than %d", third.Seq, second.Seq)
	}
}

func TestStore_InvalidKind(t *testing.T) {
	store := NewStore()
	calls := 0
	store.Subscribe(func() { calls++ })

	if err := store.Update(Kind(9), 1, 1); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Update() error = %v, want ErrUnknownKind", err)
	}
	if err := store.BatchUpdate(Kind(0), map[int]any{1: 1}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("BatchUpdate() error = %v, want ErrUnknownKind", err)
	}
	if calls != 0 {
		t.Errorf("notifications = %d, want 0", calls)
	}
}

func TestStore_WatchReceivesSortedEntries(t *testing.T) {
	store := NewStore()
	var got Change
	store.Watch(func(c Change) { got = c })

	store.BatchUpdate(KindUShort, map[int]any{30: 3, 10: 1, 20: 2}) //nolint:errcheck // valid kind

	if got.Kind != KindUShort || len(got.Entries) != 3 {
		t.Fatalf("change = %+v", got)
	}
	for i, id := range []int{10, 20, 30} {
		if got.Entries[i].ID != id {
			t.Errorf("entry %d id = %d, want %d", i, got.Entries[i].ID, id)
		}
	}
}

func TestStore_GetManyAndSnapshot(t *testing.T) {
	store := NewStore()
	store.BatchUpdate(KindUShort, map[int]any{10: 75, 11: 20}) //nolint:errcheck // valid kind

	many := store.GetMany(KindUShort, []int{10, 12})
	if len(many) != 1 || many[10].Value != 75 {
		t.Errorf("GetMany() = %+v", many)
	}

	snap := store.Snapshot()
	delete(snap[KindUShort], 10)
	if _, ok := store.Get(KindUShort, 10); !ok {
		t.Error("mutating Snapshot() result changed the store")
	}
	if store.Len(KindUShort) != 2 {
		t.Errorf("Len() = %d, want 2", store.Len(KindUShort))
	}
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			store.Update(KindUShort, i%10, i) //nolint:errcheck // valid kind
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				store.Get(KindUShort, i%10)
				store.Snapshot()
			}
		}()
	}

	wg.Wait()

	if got, ok := store.Get(KindUShort, 9); !ok || got.Value != 499 {
		t.Errorf("final ushort 9 = %+v, want 499", got)
	}
}
