package platform

import "errors"

// WindowID is a platform-neutral window identifier. Zero means "no window".
type WindowID uintptr

var (
	// ErrWindowNotFound is returned by FindWindow when no window matches.
	ErrWindowNotFound = errors.New("window not found")
	// ErrWindowGone is returned when a previously resolved window no longer
	// exists.
	ErrWindowGone = errors.New("window no longer exists")
	// ErrUnsupported is returned by New on platforms without a backend.
	ErrUnsupported = errors.New("platform not supported")
)

// Bounds is a window's outer box in screen coordinates.
type Bounds struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (b Bounds) Width() int  { return b.Right - b.Left }
func (b Bounds) Height() int { return b.Bottom - b.Top }

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// FindWindow looks up a top-level window by class and title.
	FindWindow(class, title string) (WindowID, error)
	// ForegroundWindow returns the window that currently has input focus.
	ForegroundWindow() (WindowID, error)
	// ActiveWindow returns the focused window if it belongs to this process,
	// or 0 when none does.
	ActiveWindow() (WindowID, error)
	WindowBounds(id WindowID) (Bounds, error)
	MoveResize(id WindowID, r Rect) error
	Show(id WindowID) error
	Hide(id WindowID) error
	// Focus brings a window to the foreground.
	Focus(id WindowID) error
	// PrepareOverlay applies the always-on-top window attributes to this
	// process's overlay window.
	PrepareOverlay(id WindowID) error
	Close() error
}
