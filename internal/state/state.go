package state

import (
	"context"
	"sync"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/platform"
)

// Flag is a boolean cell guarded by its own lock.
type Flag struct {
	mu sync.Mutex
	v  bool
}

// NewFlag returns a flag with the given initial value.
func NewFlag(v bool) *Flag {
	return &Flag{v: v}
}

func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *Flag) Set(v bool) {
	f.mu.Lock()
	f.v = v
	f.mu.Unlock()
}

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = !f.v
	return f.v
}

// OptionalKey holds a key that may be unset.
type OptionalKey struct {
	mu  sync.Mutex
	key keys.Key
	set bool
}

func (o *OptionalKey) Get() (keys.Key, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.key, o.set
}

// Set stores k. keys.Unknown clears the value.
func (o *OptionalKey) Set(k keys.Key) {
	o.mu.Lock()
	o.key = k
	o.set = k != keys.Unknown
	o.mu.Unlock()
}

func (o *OptionalKey) Clear() {
	o.Set(keys.Unknown)
}

// Handle is a window handle that can be initialized exactly once. Readers
// that observe a non-zero value are guaranteed to see the value written by
// the single successful Set.
type Handle struct {
	once     sync.Once
	chanOnce sync.Once
	ready    chan struct{}
	id       platform.WindowID
}

func (h *Handle) readyChan() chan struct{} {
	h.chanOnce.Do(func() {
		h.ready = make(chan struct{})
	})
	return h.ready
}

// Set stores id if the handle is still empty. It reports whether this call
// initialized the handle; zero ids are rejected.
func (h *Handle) Set(id platform.WindowID) bool {
	if id == 0 {
		return false
	}
	ready := h.readyChan()
	stored := false
	h.once.Do(func() {
		h.id = id
		stored = true
		close(ready)
	})
	return stored
}

// Get returns the handle, or 0 if it has not been set yet.
func (h *Handle) Get() platform.WindowID {
	select {
	case <-h.readyChan():
		return h.id
	default:
		return 0
	}
}

// Wait blocks until the handle is set or ctx is done.
func (h *Handle) Wait(ctx context.Context) (platform.WindowID, error) {
	select {
	case <-h.readyChan():
		return h.id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WindowCell holds a window handle that is rewritten over time.
type WindowCell struct {
	mu sync.Mutex
	id platform.WindowID
}

func (w *WindowCell) Get() platform.WindowID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id
}

func (w *WindowCell) Set(id platform.WindowID) {
	w.mu.Lock()
	w.id = id
	w.mu.Unlock()
}

// Shared is the state shared between the overlay UI, the tracking loop and
// the input listeners. It is constructed once at startup and passed to each
// component.
type Shared struct {
	// UserHidden is flipped by the toggle hotkey.
	UserHidden Flag
	// CustomTrigger is an optional extra remap trigger chosen in the UI.
	CustomTrigger OptionalKey
	// CustomEnabled gates CustomTrigger.
	CustomEnabled Flag
	// Overlay is this process's own window, resolved on the first frame.
	Overlay Handle
	// Target is the target window seen by the last tracking tick, 0 when
	// it was not found.
	Target WindowCell

	triggers []keys.Key
	remap    map[keys.Key]*Flag
}

// NewShared creates the shared state with one remap flag per trigger, each
// starting at enabled.
func NewShared(triggers []keys.Key, enabled bool) *Shared {
	s := &Shared{remap: make(map[keys.Key]*Flag, len(triggers))}
	for _, k := range triggers {
		if _, dup := s.remap[k]; dup {
			continue
		}
		s.triggers = append(s.triggers, k)
		s.remap[k] = NewFlag(enabled)
	}
	return s
}

// Triggers returns the configured trigger keys in configuration order.
func (s *Shared) Triggers() []keys.Key {
	out := make([]keys.Key, len(s.triggers))
	copy(out, s.triggers)
	return out
}

// RemapFlag returns the enable flag for a configured trigger.
func (s *Shared) RemapFlag(k keys.Key) (*Flag, bool) {
	f, ok := s.remap[k]
	return f, ok
}
