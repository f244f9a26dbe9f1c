package site

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-remote/internal/control"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// fakeConnector records connection calls.
type fakeConnector struct {
	mu         sync.Mutex
	calls      []string
	connected  bool
	connectErr error
	sent       []protocol.Command
}

func (f *fakeConnector) Connect(_ context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "connect "+address)
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeConnector) Disconnect(silent bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if silent {
		f.calls = append(f.calls, "disconnect silent")
	} else {
		f.calls = append(f.calls, "disconnect")
	}
	f.connected = false
}

func (f *fakeConnector) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeConnector) SendCommand(cmd protocol.Command) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return false
	}
	f.sent = append(f.sent, cmd)
	return true
}

func newTestSession(t *testing.T) (*Session, *feedback.Store, *fakeConnector) {
	t.Helper()
	s, err := Parse([]byte(testSite))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	store := feedback.NewStore()
	conn := &fakeConnector{}
	session := NewSession(s, store, conn)
	t.Cleanup(session.Close)
	return session, store, conn
}

func TestSession_SelectZone(t *testing.T) {
	session, store, conn := newTestSession(t)

	var seen []string
	session.OnZoneChange(func(z *Zone) {
		if z == nil {
			seen = append(seen, "<none>")
			return
		}
		seen = append(seen, z.Slug)
	})

	if err := session.SelectZone(context.Background(), "salon"); err != nil {
		t.Fatalf("SelectZone() error = %v", err)
	}
	_ = store.Update(feedback.KindUShort, 12, 40)

	// Switching zone clears the previous zone's feedback.
	if err := session.SelectZone(context.Background(), "Chambre Nord"); err != nil {
		t.Fatalf("SelectZone() error = %v", err)
	}
	if store.Len(feedback.KindUShort) != 0 {
		t.Error("store not cleared on zone change")
	}

	wantCalls := []string{"disconnect silent", "connect ws://127.0.0.1:9001", "disconnect silent"}
	if !reflect.DeepEqual(conn.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", conn.calls, wantCalls)
	}
	if session.Connected() {
		t.Error("zone without address should stay disconnected")
	}
	if !reflect.DeepEqual(seen, []string{"salon", "chambre-nord"}) {
		t.Errorf("zone changes = %v", seen)
	}

	session.Deselect()
	if session.Zone() != nil {
		t.Error("Zone() should be nil after Deselect")
	}
	if _, err := session.Control("audio"); !errors.Is(err, ErrNoZone) {
		t.Errorf("Control() error = %v, want ErrNoZone", err)
	}
}

func TestSession_SelectUnknownZone(t *testing.T) {
	session, _, conn := newTestSession(t)
	if err := session.SelectZone(context.Background(), "garage"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("SelectZone() error = %v, want ErrZoneNotFound", err)
	}
	if len(conn.calls) != 0 {
		t.Errorf("unknown zone should not touch the connection, calls = %v", conn.calls)
	}
}

func TestSession_ConnectFailureKeepsZone(t *testing.T) {
	session, _, conn := newTestSession(t)
	conn.connectErr = errors.New("refused")

	if err := session.SelectZone(context.Background(), "salon"); err == nil {
		t.Fatal("SelectZone() should report the connect failure")
	}
	if z := session.Zone(); z == nil || z.Slug != "salon" {
		t.Errorf("Zone() = %v, want salon", z)
	}
}

func TestSession_ControlsFollowZone(t *testing.T) {
	session, store, _ := newTestSession(t)

	if err := session.SelectZone(context.Background(), "salon"); err != nil {
		t.Fatalf("SelectZone() error = %v", err)
	}
	c, err := session.Control("ceiling")
	if err != nil {
		t.Fatalf("Control() error = %v", err)
	}
	if _, ok := c.(*control.LightControl); !ok {
		t.Errorf("Control(ceiling) = %T, want *control.LightControl", c)
	}
	if store.SubscriberCount() != 4 {
		t.Errorf("SubscriberCount() = %d, want one per device", store.SubscriberCount())
	}

	if err := c.Handle(control.Action{Name: control.ActionToggle}); err != nil {
		t.Errorf("toggle error = %v", err)
	}

	session.Deselect()
	if store.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() after Deselect = %d, want 0", store.SubscriberCount())
	}
}

func TestSession_ApplyPreset(t *testing.T) {
	t.Run("connected sends the preset command", func(t *testing.T) {
		session, _, conn := newTestSession(t)
		if err := session.SelectZone(context.Background(), "salon"); err != nil {
			t.Fatalf("SelectZone() error = %v", err)
		}

		result, err := session.ApplyPreset("Evening")
		if err != nil {
			t.Fatalf("ApplyPreset() error = %v", err)
		}
		if !result.Remote {
			t.Error("Remote = false, want true")
		}
		if !reflect.DeepEqual(conn.sent, []protocol.Command{protocol.Digital(102)}) {
			t.Errorf("sent = %v", conn.sent)
		}
	})

	t.Run("offline applies levels locally", func(t *testing.T) {
		session, _, conn := newTestSession(t)
		conn.connectErr = errors.New("refused")
		_ = session.SelectZone(context.Background(), "salon")

		result, err := session.ApplyPreset("Morning")
		if err != nil {
			t.Fatalf("ApplyPreset() error = %v", err)
		}
		if result.Remote || result.Level != 80 {
			t.Errorf("result = %+v, want local level 80", result)
		}

		for _, slug := range []string{"ceiling", "wall-spots"} {
			c, _ := session.Control(slug)
			lc := c.(*control.LightControl)
			if !lc.IsOn() || lc.Intensity() != 80 {
				t.Errorf("%s: on=%v intensity=%v, want true 80", slug, lc.IsOn(), lc.Intensity())
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		session, _, _ := newTestSession(t)
		if _, err := session.ApplyPreset("Morning"); !errors.Is(err, ErrNoZone) {
			t.Errorf("no zone error = %v", err)
		}
		_ = session.SelectZone(context.Background(), "salon")
		if _, err := session.ApplyPreset("Party"); !errors.Is(err, ErrPresetNotFound) {
			t.Errorf("unknown preset error = %v", err)
		}
		_ = session.SelectZone(context.Background(), "chambre-nord")
		if _, err := session.ApplyPreset("Morning"); !errors.Is(err, ErrPresetNotFound) {
			t.Errorf("zone without presets error = %v", err)
		}
	})
}
