package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/photo-sheet/internal/editor"
)

func TestEditorManager_CreateGetDelete(t *testing.T) {
	m := newTestManager()

	s := m.Create("owner-1")
	if s.ID == "" {
		t.Fatal("expected a session ID")
	}
	if m.Get(s.ID) != s {
		t.Error("Get returned a different session")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	if !m.Delete(s.ID) {
		t.Error("Delete() = false for an existing session")
	}
	if m.Delete(s.ID) {
		t.Error("Delete() = true for a removed session")
	}
	if m.Get(s.ID) != nil {
		t.Error("session still present after delete")
	}
}

func TestEditorSession_StateReportsResetTargets(t *testing.T) {
	defaults := editor.DefaultSettings()
	defaults.Copies = 6
	defaults.PhotoSpacing = 0.5
	m := NewEditorManager(defaults, 0, nil)
	s := m.Create("owner-1")

	state, _, err := s.Do(func(e *editor.Editor) error {
		return e.SetCopies(2)
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if state.Settings.Copies != 2 {
		t.Errorf("copies = %d, want 2", state.Settings.Copies)
	}
	if diff := cmp.Diff(defaults, state.Defaults); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}

	state, _, _ = s.Do(func(e *editor.Editor) error {
		e.ResetAll()
		return nil
	})
	if diff := cmp.Diff(state.Defaults, state.Settings); diff != "" {
		t.Errorf("reset should land on the reported defaults (-want +got):\n%s", diff)
	}
}

func TestEditorSession_DoBroadcastsChanges(t *testing.T) {
	m := newTestManager()
	s := m.Create("owner-1")

	ch := s.AddListener()
	defer s.RemoveListener(ch)

	state, changed, err := s.Do(func(e *editor.Editor) error {
		return e.SetCopies(3)
	})
	if err != nil || !changed {
		t.Fatalf("Do() changed=%v err=%v", changed, err)
	}
	if state.Settings.Copies != 3 {
		t.Errorf("copies = %d, want 3", state.Settings.Copies)
	}

	select {
	case ev := <-ch:
		if ev.Type != EventState {
			t.Errorf("event type = %q, want %q", ev.Type, EventState)
		}
		if got := ev.Data.(StateResponse).Revision; got != state.Revision {
			t.Errorf("event revision = %d, want %d", got, state.Revision)
		}
	default:
		t.Fatal("expected a state event")
	}

	// A no-op sends nothing.
	_, changed, _ = s.Do(func(e *editor.Editor) error {
		e.ToggleFit(12345)
		return nil
	})
	if changed {
		t.Error("no-op reported as a change")
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestEditorSession_DoReturnsError(t *testing.T) {
	s := newTestManager().Create("o")
	boom := errors.New("boom")
	_, _, err := s.Do(func(e *editor.Editor) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want %v", err, boom)
	}
}

func TestEditorManager_Sweep(t *testing.T) {
	m := NewEditorManager(editor.DefaultSettings(), time.Hour, nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle := m.Create("a")
	busy := m.Create("b")
	watched := m.Create("c")
	ch := watched.AddListener()
	defer watched.RemoveListener(ch)

	now = now.Add(90 * time.Minute)
	busy.Do(func(e *editor.Editor) error { return nil })

	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if m.Get(idle.ID) != nil {
		t.Error("idle session was not dropped")
	}
	if m.Get(busy.ID) == nil {
		t.Error("recently used session was dropped")
	}
	if m.Get(watched.ID) == nil {
		t.Error("session with an open event stream was dropped")
	}
}

func TestEditorManager_SweepDisabled(t *testing.T) {
	m := newTestManager()
	m.Create("a")
	m.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d with expiry disabled", n)
	}
}

func TestEventBroadcaster_CloseAll(t *testing.T) {
	var b EventBroadcaster
	ch := b.AddListener()

	b.CloseAll("bye")

	ev, ok := <-ch
	if !ok || ev.Type != EventClosed || ev.Message != "bye" {
		t.Errorf("expected closed event, got %+v (ok=%v)", ev, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("listener channel should be closed")
	}

	// Removing after close must not panic, and late listeners are closed at once.
	b.RemoveListener(ch)
	late := b.AddListener()
	if _, ok := <-late; ok {
		t.Error("listener added after close should be closed")
	}
}
