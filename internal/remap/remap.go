package remap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/keyhook"
	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/state"
)

const (
	DefaultPressDelay = 10 * time.Millisecond
	DefaultQueueSize  = 64
)

// Config holds configuration for the remapper.
type Config struct {
	Substitute keys.Key
	// PressDelay separates the synthesized press and release.
	PressDelay time.Duration
	// QueueSize bounds trigger presses waiting for the worker.
	QueueSize int
	Logger    *slog.Logger
}

// Snapshotter observes the current focus state.
type Snapshotter interface {
	Snapshot() focus.Handles
}

// Remapper watches key events and emits the substitute key.
type Remapper struct {
	shared     *state.Shared
	focus      Snapshotter
	inject     keyhook.Injector
	substitute keys.Key
	delay      time.Duration
	queue      chan keyhook.Event
	logger     *slog.Logger
}

// New validates cfg against the configured triggers and creates a remapper.
func New(cfg Config, shared *state.Shared, focus Snapshotter, inject keyhook.Injector) (*Remapper, error) {
	if cfg.Substitute == keys.Unknown {
		return nil, fmt.Errorf("substitute key is required")
	}
	for _, k := range shared.Triggers() {
		if k == cfg.Substitute {
			return nil, fmt.Errorf("substitute key %s is also a trigger", k)
		}
	}

	delay := cfg.PressDelay
	if delay <= 0 {
		delay = DefaultPressDelay
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Remapper{
		shared:     shared,
		focus:      focus,
		inject:     inject,
		substitute: cfg.Substitute,
		delay:      delay,
		queue:      make(chan keyhook.Event, size),
		logger:     logger,
	}, nil
}

// Notify is the key hook callback. It filters cheaply and queues trigger
// presses for the worker without blocking.
func (r *Remapper) Notify(ev keyhook.Event) {
	if !ev.Down || ev.Injected || !r.enabled(ev.Key) {
		return
	}
	select {
	case r.queue <- ev:
	default:
		r.logger.Debug("remap queue full, press dropped", "key", ev.Key)
	}
}

// Run processes queued presses until ctx is cancelled.
func (r *Remapper) Run(ctx context.Context) {
	r.logger.Info("remapper started", "substitute", r.substitute, "delay", r.delay)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("remapper stopped")
			return
		case ev := <-r.queue:
			r.Handle(ctx, ev)
		}
	}
}

// Handle synthesizes one substitute press+release if ev is an enabled
// trigger press and the target has focus. It reports whether keys were
// synthesized.
func (r *Remapper) Handle(ctx context.Context, ev keyhook.Event) bool {
	if !ev.Down || ev.Injected || !r.enabled(ev.Key) {
		return false
	}
	if !focus.TargetFocused(r.focus.Snapshot()) {
		return false
	}

	if err := r.inject.KeyDown(r.substitute); err != nil {
		r.logger.Warn("remap: press failed", "trigger", ev.Key, "key", r.substitute, "error", err)
		return false
	}

	timer := time.NewTimer(r.delay)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	// Release even on shutdown so the key is never left held.
	if err := r.inject.KeyUp(r.substitute); err != nil {
		r.logger.Warn("remap: release failed", "trigger", ev.Key, "key", r.substitute, "error", err)
	}
	r.logger.Debug("remapped", "trigger", ev.Key, "key", r.substitute)
	return true
}

func (r *Remapper) enabled(k keys.Key) bool {
	if k == keys.Unknown || k == r.substitute {
		return false
	}
	if flag, ok := r.shared.RemapFlag(k); ok && flag.Get() {
		return true
	}
	if !r.shared.CustomEnabled.Get() {
		return false
	}
	custom, ok := r.shared.CustomTrigger.Get()
	return ok && custom == k
}
