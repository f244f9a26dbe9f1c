package control

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

func TestLevelControl_GuardSuppressesFeedback(t *testing.T) {
	store := feedback.NewStore()
	sender := &recordingSender{}
	c := NewLevel(store, lightDevice(), device.OpIntensity, 0, 100, sender)
	defer c.Close()

	_ = store.Update(feedback.KindUShort, 12, 20)
	if c.Value() != 20 {
		t.Fatalf("Value() = %v, want 20", c.Value())
	}

	c.BeginGesture()
	if err := c.Move(40); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := c.Move(55); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	// Lagging echo while the gesture is active.
	_ = store.Update(feedback.KindUShort, 12, 40)
	if c.Value() != 55 {
		t.Errorf("Value() during gesture = %v, want 55 (feedback suppressed)", c.Value())
	}
	if pre, _ := c.Guard().PreManipulationValue(); pre != 20.0 {
		t.Errorf("PreManipulationValue() = %v, want 20", pre)
	}

	c.EndGesture()
	if c.Value() != 55 {
		t.Errorf("Value() after gesture = %v, want 55 until the next feedback", c.Value())
	}

	_ = store.Update(feedback.KindUShort, 12, 56)
	if c.Value() != 56 {
		t.Errorf("Value() = %v, want 56 after next feedback", c.Value())
	}

	sent := sender.take()
	want := []protocol.Command{protocol.UShort(12, 40.0), protocol.UShort(12, 55.0)}
	if len(sent) != len(want) || sent[0] != want[0] || sent[1] != want[1] {
		t.Errorf("sent = %v, want every intermediate value %v", sent, want)
	}
}

func TestLevelControl_InitialFeedback(t *testing.T) {
	store := feedback.NewStore()
	_ = store.Update(feedback.KindUShort, 12, 70)

	c := NewLevel(store, lightDevice(), device.OpIntensity, 0, 100, &recordingSender{})
	defer c.Close()

	if c.Value() != 70 {
		t.Errorf("Value() = %v, want pre-existing 70", c.Value())
	}
}

func TestLevelControl_Handle(t *testing.T) {
	store := feedback.NewStore()
	sender := &recordingSender{}
	c := NewLevel(store, lightDevice(), device.OpIntensity, 0, 100, sender)
	defer c.Close()

	if err := c.Handle(Action{Name: ActionMove, Value: float(10)}); !errors.Is(err, ErrNoGesture) {
		t.Errorf("move without begin error = %v, want ErrNoGesture", err)
	}
	if err := c.Handle(Action{Name: ActionSet}); !errors.Is(err, ErrMissingValue) {
		t.Errorf("set without value error = %v, want ErrMissingValue", err)
	}
	if err := c.Handle(Action{Name: ActionToggle}); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("toggle error = %v, want ErrUnsupportedAction", err)
	}

	if err := c.Handle(Action{Name: ActionSet, Value: float(130)}); err != nil {
		t.Fatalf("set error = %v", err)
	}
	if c.Value() != 100 {
		t.Errorf("Value() = %v, want clamped 100", c.Value())
	}
	if c.Guard().Active() {
		t.Error("set should leave the guard inactive")
	}

	sender.offline = true
	if err := c.Handle(Action{Name: ActionSet, Value: float(30)}); !errors.Is(err, ErrNotSent) {
		t.Errorf("offline set error = %v, want ErrNotSent", err)
	}
	if c.Value() != 30 {
		t.Errorf("Value() = %v, local value should still change offline", c.Value())
	}
}

func TestLevelControl_MissingOperation(t *testing.T) {
	store := feedback.NewStore()
	c := NewLevel(store, lightDevice(), device.OpVolume, 0, 100, &recordingSender{})
	defer c.Close()

	if err := c.Move(10); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("Move() error = %v, want ErrUnsupportedAction", err)
	}
	if c.Guard() != nil {
		t.Error("Guard() should be nil without the operation")
	}
	if len(c.State()) != 0 {
		t.Errorf("State() = %v, want empty", c.State())
	}
}

func TestLevelControl_SameValueAfterReleaseIsApplied(t *testing.T) {
	store := feedback.NewStore()
	c := NewLevel(store, lightDevice(), device.OpIntensity, 0, 100, &recordingSender{})
	defer c.Close()

	_ = store.Update(feedback.KindUShort, 12, 20)
	c.BeginGesture()
	if err := c.Move(80); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	_ = store.Update(feedback.KindUShort, 12, 40)
	if c.Value() != 80 {
		t.Fatalf("Value() during gesture = %v, want 80", c.Value())
	}
	c.EndGesture()

	// The next write is applied even though it repeats the suppressed value.
	_ = store.Update(feedback.KindUShort, 12, 40)
	if c.Value() != 40 {
		t.Errorf("Value() after release = %v, want 40", c.Value())
	}

	// And so is a later write of the value already shown.
	if err := c.Handle(Action{Name: ActionSet, Value: float(90)}); err != nil {
		t.Fatalf("set error = %v", err)
	}
	_ = store.Update(feedback.KindUShort, 12, 40)
	if c.Value() != 40 {
		t.Errorf("Value() after repeated feedback = %v, want 40", c.Value())
	}
}
