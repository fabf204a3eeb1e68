package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window's position relative to the root window and its size.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// WindowGeometry returns the window's root-relative origin and size.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("get geometry of 0x%x: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("translate coordinates of 0x%x: %w", windowID, err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MapWindow shows a window.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// UnmapWindow hides a window.
func (c *Connection) UnmapWindow(windowID xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// KeepAbove asks the window manager to keep a window above others and off
// the taskbar.
func (c *Connection) KeepAbove(windowID xproto.Window) error {
	if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateAdd, "_NET_WM_STATE_ABOVE"); err != nil {
		return fmt.Errorf("set _NET_WM_STATE_ABOVE: %w", err)
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateAdd, "_NET_WM_STATE_SKIP_TASKBAR"); err != nil {
		return fmt.Errorf("set _NET_WM_STATE_SKIP_TASKBAR: %w", err)
	}
	return nil
}

// NoFocusOnMap sets _NET_WM_USER_TIME to 0, which tells EWMH window managers
// not to focus the window when it is next mapped.
func (c *Connection) NoFocusOnMap(windowID xproto.Window) error {
	if err := ewmh.WmUserTimeSet(c.XUtil, windowID, 0); err != nil {
		return fmt.Errorf("set _NET_WM_USER_TIME: %w", err)
	}
	return nil
}
