package focus

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/state"
)

// Handles is one observation of the windows that drive visibility.
type Handles struct {
	Target     platform.WindowID
	Overlay    platform.WindowID
	Foreground platform.WindowID
}

// ShouldBeVisible reports whether the overlay belongs on screen: the target
// exists, it or the overlay has focus, and the user has not hidden it.
func ShouldBeVisible(h Handles, userHidden bool) bool {
	return h.Target != 0 && TargetOrOverlayFocused(h) && !userHidden
}

// TargetOrOverlayFocused reports whether the foreground window is the target
// or the overlay.
func TargetOrOverlayFocused(h Handles) bool {
	if h.Foreground == 0 {
		return false
	}
	return h.Foreground == h.Target || h.Foreground == h.Overlay
}

// TargetFocused reports whether the target is the foreground window.
func TargetFocused(h Handles) bool {
	return h.Target != 0 && h.Foreground == h.Target
}

// WindowQuery is the subset of platform.Backend needed to observe focus.
type WindowQuery interface {
	FindWindow(class, title string) (platform.WindowID, error)
	ForegroundWindow() (platform.WindowID, error)
}

// Target identifies the external window to track.
type Target struct {
	Class string
	Title string
}

// Locator finds the target window on demand. Lookups are not cached.
type Locator struct {
	windows WindowQuery
	target  Target
	logger  *slog.Logger
}

func NewLocator(windows WindowQuery, target Target, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{windows: windows, target: target, logger: logger}
}

// ResolveTarget looks the target up. A missing target is not an error.
func (l *Locator) ResolveTarget() (platform.WindowID, bool) {
	id, err := l.windows.FindWindow(l.target.Class, l.target.Title)
	if err != nil {
		if !errors.Is(err, platform.ErrWindowNotFound) {
			l.logger.Debug("target lookup failed", "class", l.target.Class, "title", l.target.Title, "error", err)
		}
		return 0, false
	}
	return id, id != 0
}

// Oracle combines the locator, the overlay handle and the foreground window
// into a Handles snapshot.
type Oracle struct {
	locator *Locator
	windows WindowQuery
	overlay *state.Handle
	logger  *slog.Logger
}

func NewOracle(locator *Locator, windows WindowQuery, overlay *state.Handle, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{locator: locator, windows: windows, overlay: overlay, logger: logger}
}

// Locator returns the oracle's target locator.
func (o *Oracle) Locator() *Locator {
	return o.locator
}

// Snapshot re-resolves the target and reads the current foreground window.
func (o *Oracle) Snapshot() Handles {
	target, _ := o.locator.ResolveTarget()
	return o.SnapshotWithTarget(target)
}

// SnapshotWithTarget is Snapshot for callers that already resolved the
// target this tick.
func (o *Oracle) SnapshotWithTarget(target platform.WindowID) Handles {
	fg, err := o.windows.ForegroundWindow()
	if err != nil {
		o.logger.Debug("foreground lookup failed", "error", err)
		fg = 0
	}
	return Handles{
		Target:     target,
		Overlay:    o.overlay.Get(),
		Foreground: fg,
	}
}
