package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/platform/platformtest"
	"github.com/1broseidon/railers/internal/state"
)

const (
	targetID  platform.WindowID = 100
	overlayID platform.WindowID = 200
	otherID   platform.WindowID = 300

	class = "UnityWndClass"
	title = "Game"
)

var targetBounds = platform.Bounds{Left: 100, Top: 100, Right: 900, Bottom: 700}

func TestInsetsApply(t *testing.T) {
	got := DefaultInsets.Apply(targetBounds)
	want := platform.Rect{X: 108, Y: 131, Width: 784, Height: 561}
	if got != want {
		t.Fatalf("Apply(%+v) = %+v, want %+v", targetBounds, got, want)
	}
}

type countingMover struct {
	calls []platform.Rect
	err   error
}

func (m *countingMover) MoveResize(_ platform.WindowID, r platform.Rect) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, r)
	return nil
}

func TestSyncPositionIdempotent(t *testing.T) {
	m := &countingMover{}
	prev, err := SyncPosition(m, overlayID, targetBounds, unsynced, DefaultInsets)
	if err != nil {
		t.Fatalf("SyncPosition: %v", err)
	}
	prev, err = SyncPosition(m, overlayID, targetBounds, prev, DefaultInsets)
	if err != nil {
		t.Fatalf("SyncPosition: %v", err)
	}
	if len(m.calls) != 1 {
		t.Fatalf("expected 1 MoveResize call, got %d", len(m.calls))
	}
	if prev != targetBounds {
		t.Fatalf("previous = %+v, want %+v", prev, targetBounds)
	}

	moved := platform.Bounds{Left: 0, Top: 0, Right: 800, Bottom: 600}
	if _, err := SyncPosition(m, overlayID, moved, prev, DefaultInsets); err != nil {
		t.Fatalf("SyncPosition: %v", err)
	}
	if len(m.calls) != 2 {
		t.Fatalf("expected a second MoveResize after the target moved, got %d", len(m.calls))
	}
}

func TestSyncPositionFailureKeepsPrevious(t *testing.T) {
	m := &countingMover{err: errors.New("invalid window handle")}
	prev, err := SyncPosition(m, overlayID, targetBounds, unsynced, DefaultInsets)
	if err == nil {
		t.Fatalf("expected error")
	}
	if prev != unsynced {
		t.Fatalf("previous should be unchanged on failure, got %+v", prev)
	}
}

type fixture struct {
	backend *platformtest.Backend
	shared  *state.Shared
	loop    *Loop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := platformtest.New()
	backend.AddWindow(class, title, targetID, targetBounds)
	shared := state.NewShared(nil, false)
	shared.Overlay.Set(overlayID)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	oracle := focus.NewOracle(focus.NewLocator(backend, focus.Target{Class: class, Title: title}, logger), backend, &shared.Overlay, logger)
	loop := New(Config{TickRate: 200, Insets: DefaultInsets, Logger: logger}, backend, oracle, shared)
	return &fixture{backend: backend, shared: shared, loop: loop}
}

func (f *fixture) tickExpect(t *testing.T, want ...platformtest.Call) {
	t.Helper()
	f.backend.Reset()
	f.loop.Tick()
	got := f.backend.Calls()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func move(b platform.Bounds) platformtest.Call {
	return platformtest.Call{Op: "move", ID: overlayID, Rect: DefaultInsets.Apply(b)}
}

var (
	show     = platformtest.Call{Op: "show", ID: overlayID}
	hide     = platformtest.Call{Op: "hide", ID: overlayID}
	focusTgt = platformtest.Call{Op: "focus", ID: targetID}
	noCalls  []platformtest.Call
)

func TestFirstTickHidesWhenNotFocused(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(otherID)

	f.tickExpect(t, hide)
	if f.loop.Phase() != PhaseHidden {
		t.Fatalf("phase = %v, want hidden", f.loop.Phase())
	}
	f.tickExpect(t, noCalls...)
}

func TestBecomingVisibleSyncsBeforeShow(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(otherID)
	f.tickExpect(t, hide)

	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)
	if f.loop.Phase() != PhaseVisible {
		t.Fatalf("phase = %v, want visible", f.loop.Phase())
	}

	// Steady state issues nothing.
	f.tickExpect(t, noCalls...)

	// Focus moving to the overlay keeps it visible.
	f.backend.SetForeground(overlayID)
	f.tickExpect(t, noCalls...)
}

func TestTargetMovesWhileVisible(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)

	moved := platform.Bounds{Left: 0, Top: 0, Right: 1280, Bottom: 720}
	f.backend.SetBounds(targetID, moved)
	f.tickExpect(t, move(moved))
}

func TestTargetMovesWhileHidden(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)

	f.backend.SetForeground(otherID)
	f.tickExpect(t, hide)

	moved := platform.Bounds{Left: 50, Top: 60, Right: 850, Bottom: 660}
	f.backend.SetBounds(targetID, moved)
	f.tickExpect(t, noCalls...)

	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(moved), show)
}

func TestUserHideFocusesTarget(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(overlayID)
	f.tickExpect(t, move(targetBounds), show)

	f.shared.UserHidden.Set(true)
	f.tickExpect(t, hide, focusTgt)

	// Still hidden; no repeated focus stealing.
	f.tickExpect(t, noCalls...)

	f.shared.UserHidden.Set(false)
	f.tickExpect(t, show)
}

func TestFocusLossHideDoesNotFocusTarget(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)

	f.backend.SetForeground(otherID)
	f.shared.UserHidden.Set(true)
	f.tickExpect(t, hide)
}

func TestTargetClosedHides(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)

	f.backend.RemoveWindow(class, title)
	f.tickExpect(t, hide)

	f.backend.AddWindow(class, title, targetID, targetBounds)
	f.tickExpect(t, show)
}

func TestTickRecordsTarget(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.loop.Tick()
	if got := f.shared.Target.Get(); got != targetID {
		t.Fatalf("Target = %v, want %v", got, targetID)
	}

	f.backend.RemoveWindow(class, title)
	f.loop.Tick()
	if got := f.shared.Target.Get(); got != 0 {
		t.Fatalf("Target = %v after target closed, want 0", got)
	}
}

func TestHideFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.tickExpect(t, move(targetBounds), show)

	f.backend.SetForeground(otherID)
	f.backend.SetFail("hide", errors.New("access denied"))
	f.tickExpect(t, noCalls...)
	if f.loop.Phase() != PhaseVisible {
		t.Fatalf("phase changed despite failed hide: %v", f.loop.Phase())
	}

	f.backend.SetFail("hide", nil)
	f.tickExpect(t, hide)
}

func TestBoundsFailureSkipsShow(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.backend.SetFail("bounds", platform.ErrWindowGone)
	f.tickExpect(t, noCalls...)
	if f.loop.Phase() != PhaseUnknown {
		t.Fatalf("phase = %v, want unknown", f.loop.Phase())
	}

	f.backend.SetFail("bounds", nil)
	f.tickExpect(t, move(targetBounds), show)
}

func TestMoveFailureStillShowsAndRetriesMove(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)
	f.backend.SetFail("move", errors.New("invalid handle"))
	f.tickExpect(t, show)

	f.backend.SetFail("move", nil)
	f.tickExpect(t, move(targetBounds))
}

func TestTickWithoutOverlayIsNoop(t *testing.T) {
	backend := platformtest.New()
	backend.AddWindow(class, title, targetID, targetBounds)
	backend.SetForeground(targetID)
	shared := state.NewShared(nil, false)
	oracle := focus.NewOracle(focus.NewLocator(backend, focus.Target{Class: class, Title: title}, nil), backend, &shared.Overlay, nil)
	loop := New(Config{}, backend, oracle, shared)

	loop.Tick()
	if calls := backend.Calls(); len(calls) != 0 {
		t.Fatalf("expected no calls before overlay is known, got %v", calls)
	}
	if loop.Interval() != time.Second/DefaultTickRate {
		t.Fatalf("Interval() = %v, want default", loop.Interval())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.backend.SetForeground(targetID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.loop.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		calls := f.backend.Calls()
		if len(calls) >= 2 {
			if calls[0].Op != "move" || calls[1].Op != "show" {
				t.Fatalf("calls = %v, want move then show", calls)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("loop never showed the overlay")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunWaitsForOverlay(t *testing.T) {
	backend := platformtest.New()
	shared := state.NewShared(nil, false)
	oracle := focus.NewOracle(focus.NewLocator(backend, focus.Target{}, nil), backend, &shared.Overlay, nil)
	loop := New(Config{}, backend, oracle, shared)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return while waiting for overlay")
	}
}
