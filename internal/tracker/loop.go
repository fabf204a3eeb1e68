package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/state"
)

// Phase is the last visibility command that succeeded.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseHidden
	PhaseVisible
)

func (p Phase) String() string {
	switch p {
	case PhaseHidden:
		return "hidden"
	case PhaseVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// DefaultTickRate is the polling frequency when none is configured.
const DefaultTickRate = 120

// Config holds configuration for the tracking loop.
type Config struct {
	// TickRate is the number of ticks per second.
	TickRate int
	Insets   Insets
	Logger   *slog.Logger
}

// Loop polls the target window and shows, hides and moves the overlay to
// match it.
type Loop struct {
	interval time.Duration
	insets   Insets
	windows  platform.Backend
	oracle   *focus.Oracle
	shared   *state.Shared
	logger   *slog.Logger

	phase    Phase
	previous platform.Bounds
	failing  map[string]string
}

// New creates a tracking loop. The zero Insets value is honored as "no
// insets"; callers wanting the defaults pass DefaultInsets.
func New(cfg Config, windows platform.Backend, oracle *focus.Oracle, shared *state.Shared) *Loop {
	rate := cfg.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		interval: time.Second / time.Duration(rate),
		insets:   cfg.Insets,
		windows:  windows,
		oracle:   oracle,
		shared:   shared,
		logger:   logger,
		previous: unsynced,
		failing:  make(map[string]string),
	}
}

// Interval returns the time between ticks.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Phase returns the loop's view of the overlay's visibility.
func (l *Loop) Phase() Phase {
	return l.phase
}

// Run waits for the overlay window, then ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	overlay, err := l.shared.Overlay.Wait(ctx)
	if err != nil {
		l.logger.Info("tracking loop stopped before overlay was ready")
		return
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("tracking loop started", "interval", l.interval, "overlay", uintptr(overlay))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("tracking loop stopped")
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs a single tracking pass.
func (l *Loop) Tick() {
	// Recover from panics to keep the overlay tracking
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("tracking tick panic recovered", "error", err)
		}
	}()

	overlay := l.shared.Overlay.Get()
	if overlay == 0 {
		return
	}

	target, _ := l.oracle.Locator().ResolveTarget()
	l.shared.Target.Set(target)
	handles := l.oracle.SnapshotWithTarget(target)
	userHidden := l.shared.UserHidden.Get()

	if !focus.ShouldBeVisible(handles, userHidden) {
		// Only a hide the user asked for returns focus to the target; a
		// hide caused by focus moving elsewhere leaves focus alone.
		byUser := userHidden && focus.ShouldBeVisible(handles, false)
		l.hide(overlay, target, byUser)
		return
	}

	l.show(overlay, target)
}

func (l *Loop) hide(overlay, target platform.WindowID, byUser bool) {
	if l.phase == PhaseHidden {
		return
	}
	if err := l.windows.Hide(overlay); err != nil {
		l.failed("hide", err)
		return
	}
	l.recovered("hide")
	l.logger.Debug("overlay hidden", "by_user", byUser)
	l.phase = PhaseHidden

	if byUser {
		if err := l.windows.Focus(target); err != nil {
			l.failed("focus", err)
			return
		}
		l.recovered("focus")
	}
}

func (l *Loop) show(overlay, target platform.WindowID) {
	bounds, err := l.windows.WindowBounds(target)
	if err != nil {
		l.failed("bounds", err)
		return
	}
	l.recovered("bounds")

	prev, err := SyncPosition(l.windows, overlay, bounds, l.previous, l.insets)
	l.previous = prev
	if err != nil {
		l.failed("move", err)
	} else {
		l.recovered("move")
	}

	if l.phase == PhaseVisible {
		return
	}
	if err := l.windows.Show(overlay); err != nil {
		l.failed("show", err)
		return
	}
	l.recovered("show")
	l.logger.Debug("overlay shown", "bounds", bounds)
	l.phase = PhaseVisible
}

// failed logs an OS call failure once until the call succeeds again.
func (l *Loop) failed(op string, err error) {
	msg := err.Error()
	if l.failing[op] == msg {
		return
	}
	l.failing[op] = msg
	l.logger.Warn("tracking: "+op+" failed", "error", err)
}

func (l *Loop) recovered(op string) {
	if _, ok := l.failing[op]; !ok {
		return
	}
	delete(l.failing, op)
	l.logger.Info("tracking: " + op + " recovered")
}
