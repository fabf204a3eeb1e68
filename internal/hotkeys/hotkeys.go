package hotkeys

import (
	"context"
	"log/slog"

	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/state"
)

// KeyState distinguishes hotkey presses from releases.
type KeyState int

const (
	Pressed KeyState = iota
	Released
)

func (s KeyState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Event is one hotkey transition.
type Event struct {
	State KeyState
}

// Source delivers global hotkey events.
type Source interface {
	// Register grabs combo system-wide. fn must not block.
	Register(combo keys.Combo, fn func(Event)) error
	// Run dispatches events until ctx is cancelled, then releases the grab.
	Run(ctx context.Context)
	// Close releases a source whose Run was never started.
	Close() error
}

// runUntilDone runs a blocking event loop until it returns by itself or ctx
// is cancelled, in which case wake must make it return.
func runUntilDone(ctx context.Context, loop func(), wake func()) {
	stopped := make(chan struct{})
	watcher := make(chan struct{})

	go func() {
		defer close(watcher)
		select {
		case <-ctx.Done():
			wake()
		case <-stopped:
		}
	}()

	loop()
	close(stopped)
	// The caller may tear down the connection once we return.
	<-watcher
}

// Snapshotter observes the current focus state.
type Snapshotter interface {
	Snapshot() focus.Handles
}

// Toggler flips the user-hidden flag when the hotkey is pressed while the
// target or the overlay has focus.
type Toggler struct {
	focus  Snapshotter
	hidden *state.Flag
	events chan Event
	logger *slog.Logger
}

// NewToggler creates a toggler writing to hidden.
func NewToggler(focus Snapshotter, hidden *state.Flag, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggler{
		focus:  focus,
		hidden: hidden,
		events: make(chan Event, 16),
		logger: logger,
	}
}

// Notify queues an event without blocking. It is meant to be passed to
// Source.Register.
func (t *Toggler) Notify(ev Event) {
	select {
	case t.events <- ev:
	default:
		t.logger.Debug("hotkey event dropped", "state", ev.State)
	}
}

// Run handles queued events until ctx is cancelled.
func (t *Toggler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-t.events:
			t.Handle(ev)
		}
	}
}

// Handle applies one event and reports whether the flag was flipped.
func (t *Toggler) Handle(ev Event) bool {
	if ev.State != Pressed {
		return false
	}
	h := t.focus.Snapshot()
	if !focus.TargetOrOverlayFocused(h) {
		t.logger.Debug("hotkey ignored: target and overlay unfocused", "foreground", uintptr(h.Foreground))
		return false
	}
	hidden := t.hidden.Toggle()
	t.logger.Info("overlay toggled", "user_hidden", hidden)
	return true
}
