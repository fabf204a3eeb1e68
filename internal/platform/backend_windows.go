//go:build windows

package platform

import (
	"fmt"

	"github.com/1broseidon/railers/internal/win32"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// WindowsBackend drives top-level windows through user32.
type WindowsBackend struct {
	pid uint32
}

var _ Backend = (*WindowsBackend)(nil)

// Replaced in tests.
var (
	isWindow   = func(hwnd win.HWND) bool { return win32.IsWindow(uintptr(hwnd)) }
	showWindow = win.ShowWindow
)

// New opens the backend for the current platform.
func New() (Backend, error) {
	return NewWindowsBackend(), nil
}

// NewWindowsBackend creates a Win32 backend.
func NewWindowsBackend() *WindowsBackend {
	return &WindowsBackend{pid: windows.GetCurrentProcessId()}
}

// Close is a no-op; user32 needs no connection.
func (b *WindowsBackend) Close() error { return nil }

// FindWindow wraps FindWindowW. Empty class or title match any window.
func (b *WindowsBackend) FindWindow(class, title string) (WindowID, error) {
	classPtr, err := optionalUTF16(class)
	if err != nil {
		return 0, err
	}
	titlePtr, err := optionalUTF16(title)
	if err != nil {
		return 0, err
	}

	hwnd := win.FindWindow(classPtr, titlePtr)
	if hwnd == 0 {
		return 0, ErrWindowNotFound
	}
	return WindowID(hwnd), nil
}

func optionalUTF16(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", s, err)
	}
	return p, nil
}

// ForegroundWindow wraps GetForegroundWindow.
func (b *WindowsBackend) ForegroundWindow() (WindowID, error) {
	return WindowID(win.GetForegroundWindow()), nil
}

// ActiveWindow returns the foreground window when it belongs to this process.
func (b *WindowsBackend) ActiveWindow() (WindowID, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, nil
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return 0, fmt.Errorf("GetWindowThreadProcessId: %w", err)
	}
	if pid != b.pid {
		return 0, nil
	}
	return WindowID(hwnd), nil
}

// WindowBounds wraps GetWindowRect.
func (b *WindowsBackend) WindowBounds(id WindowID) (Bounds, error) {
	var rect win.RECT
	if !win.GetWindowRect(win.HWND(id), &rect) {
		return Bounds{}, fmt.Errorf("GetWindowRect 0x%x: %w", uintptr(id), ErrWindowGone)
	}
	return Bounds{
		Left:   int(rect.Left),
		Top:    int(rect.Top),
		Right:  int(rect.Right),
		Bottom: int(rect.Bottom),
	}, nil
}

// MoveResize places the window topmost at r without activating it.
func (b *WindowsBackend) MoveResize(id WindowID, r Rect) error {
	ok := win.SetWindowPos(
		win.HWND(id),
		win.HWND_TOPMOST,
		int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height),
		win.SWP_ASYNCWINDOWPOS|win.SWP_NOACTIVATE,
	)
	if !ok {
		return fmt.Errorf("SetWindowPos 0x%x: %w", uintptr(id), windows.GetLastError())
	}
	return nil
}

// Show wraps ShowWindow(SW_SHOWNA) so the overlay never takes activation
// from the target.
func (b *WindowsBackend) Show(id WindowID) error {
	if !isWindow(win.HWND(id)) {
		return ErrWindowGone
	}
	// ShowWindow returns the previous visibility, not success.
	showWindow(win.HWND(id), win.SW_SHOWNA)
	return nil
}

// Hide wraps ShowWindow(SW_HIDE).
func (b *WindowsBackend) Hide(id WindowID) error {
	if !isWindow(win.HWND(id)) {
		return ErrWindowGone
	}
	showWindow(win.HWND(id), win.SW_HIDE)
	return nil
}

// Focus wraps SetForegroundWindow.
func (b *WindowsBackend) Focus(id WindowID) error {
	if !win.SetForegroundWindow(win.HWND(id)) {
		return fmt.Errorf("SetForegroundWindow 0x%x refused", uintptr(id))
	}
	return nil
}

// PrepareOverlay disables DWM transitions so hide/show are instant.
func (b *WindowsBackend) PrepareOverlay(id WindowID) error {
	return win32.DisableTransitions(uintptr(id))
}
