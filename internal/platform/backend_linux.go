//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/railers/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
	pid  int
}

var _ Backend = (*LinuxBackend)(nil)

// New opens the backend for the current platform.
func New() (Backend, error) {
	return NewLinuxBackendFromDisplay()
}

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, pid: os.Getpid()}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

// FindWindow returns the first client window matching WM_CLASS and title.
func (b *LinuxBackend) FindWindow(class, title string) (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.FindWindowByClassAndTitle(class, title)
	if errors.Is(err, x11.ErrNoMatch) {
		return 0, ErrWindowNotFound
	}
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ForegroundWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ForegroundWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ActiveWindow returns the active window when it belongs to this process.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	wid, err := b.ForegroundWindow()
	if err != nil || wid == 0 {
		return 0, err
	}

	pid, err := b.conn.WindowPID(xproto.Window(wid))
	if err != nil || pid != b.pid {
		// Windows without _NET_WM_PID are treated as foreign.
		return 0, nil
	}
	return wid, nil
}

// WindowBounds returns the window's box in root coordinates.
func (b *LinuxBackend) WindowBounds(id WindowID) (Bounds, error) {
	conn, err := b.connection()
	if err != nil {
		return Bounds{}, err
	}

	geom, err := conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", ErrWindowGone, err)
	}
	return Bounds{
		Left:   geom.X,
		Top:    geom.Y,
		Right:  geom.X + geom.Width,
		Bottom: geom.Y + geom.Height,
	}, nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(id WindowID, r Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(xproto.Window(id), r.X, r.Y, r.Width, r.Height)
}

// Show maps the window.
func (b *LinuxBackend) Show(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MapWindow(xproto.Window(id))
}

// Hide unmaps the window.
func (b *LinuxBackend) Hide(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.UnmapWindow(xproto.Window(id))
}

// Focus activates the window through the window manager.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(id))
}

// PrepareOverlay keeps the overlay above other windows and stops the window
// manager from focusing it when the tracker maps it again.
func (b *LinuxBackend) PrepareOverlay(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if err := conn.NoFocusOnMap(xproto.Window(id)); err != nil {
		return err
	}
	return conn.KeepAbove(xproto.Window(id))
}

// Connection exposes the X11 connection for input listeners.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
