package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/railers/internal/platform"
)

// Call records one mutating backend call.
type Call struct {
	Op   string
	ID   platform.WindowID
	Rect platform.Rect
}

func (c Call) String() string {
	if c.Op == "move" {
		return fmt.Sprintf("move(%d, %+v)", c.ID, c.Rect)
	}
	return fmt.Sprintf("%s(%d)", c.Op, c.ID)
}

// Backend is a scriptable fake. The zero value has no windows.
type Backend struct {
	mu sync.Mutex

	windows    map[string]platform.WindowID
	bounds     map[platform.WindowID]platform.Bounds
	foreground platform.WindowID
	active     platform.WindowID
	calls      []Call

	// Fail maps an operation name ("move", "show", "hide", "focus",
	// "bounds", "prepare", "foreground") to an error returned by it.
	Fail map[string]error
}

var _ platform.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		windows: make(map[string]platform.WindowID),
		bounds:  make(map[platform.WindowID]platform.Bounds),
		Fail:    make(map[string]error),
	}
}

func key(class, title string) string { return class + "\x00" + title }

// AddWindow registers a findable window with the given bounds.
func (b *Backend) AddWindow(class, title string, id platform.WindowID, bounds platform.Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows[key(class, title)] = id
	b.bounds[id] = bounds
}

// RemoveWindow makes a window unfindable.
func (b *Backend) RemoveWindow(class, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.windows[key(class, title)]
	delete(b.windows, key(class, title))
	delete(b.bounds, id)
}

func (b *Backend) SetBounds(id platform.WindowID, bounds platform.Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bounds[id] = bounds
}

func (b *Backend) SetForeground(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foreground = id
}

func (b *Backend) SetActive(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// SetFail makes op return err; a nil err clears the failure.
func (b *Backend) SetFail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.Fail, op)
		return
	}
	b.Fail[op] = err
}

// Calls returns the recorded mutating calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Reset clears the recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) FindWindow(class, title string) (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.windows[key(class, title)]
	if !ok {
		return 0, platform.ErrWindowNotFound
	}
	return id, nil
}

func (b *Backend) ForegroundWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.Fail["foreground"]; err != nil {
		return 0, err
	}
	return b.foreground, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active, nil
}

func (b *Backend) WindowBounds(id platform.WindowID) (platform.Bounds, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.Fail["bounds"]; err != nil {
		return platform.Bounds{}, err
	}
	bounds, ok := b.bounds[id]
	if !ok {
		return platform.Bounds{}, platform.ErrWindowGone
	}
	return bounds, nil
}

func (b *Backend) record(c Call) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.Fail[c.Op]; err != nil {
		return err
	}
	b.calls = append(b.calls, c)
	return nil
}

func (b *Backend) MoveResize(id platform.WindowID, r platform.Rect) error {
	return b.record(Call{Op: "move", ID: id, Rect: r})
}

func (b *Backend) Show(id platform.WindowID) error {
	return b.record(Call{Op: "show", ID: id})
}

func (b *Backend) Hide(id platform.WindowID) error {
	return b.record(Call{Op: "hide", ID: id})
}

func (b *Backend) Focus(id platform.WindowID) error {
	if err := b.record(Call{Op: "focus", ID: id}); err != nil {
		return err
	}
	b.SetForeground(id)
	return nil
}

func (b *Backend) PrepareOverlay(id platform.WindowID) error {
	return b.record(Call{Op: "prepare", ID: id})
}

func (b *Backend) Close() error { return nil }
