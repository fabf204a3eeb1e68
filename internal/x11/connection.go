package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	xtestOnce sync.Once
	xtestErr  error
}

// NewConnection establishes a connection to the X11 server and initializes
// the keyboard mapping used for hotkeys and key lookups.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the X11 event loop until Quit is called (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Waker stops a running EventLoop from another goroutine. The loop only
// checks its quit flag after an event arrives.
type Waker struct {
	conn *Connection
	win  xproto.Window
	once sync.Once
	err  error
}

// NewWaker creates an unmapped InputOnly window on c. Destroying it delivers
// a DestroyNotify whose handler quits the loop on the loop's own goroutine.
func (c *Connection) NewWaker() (*Waker, error) {
	xc := c.XUtil.Conn()
	wid, err := xproto.NewWindowId(xc)
	if err != nil {
		return nil, fmt.Errorf("allocate wake window: %w", err)
	}
	err = xproto.CreateWindowChecked(xc, 0, wid, c.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0,
		xproto.CwEventMask, []uint32{xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return nil, fmt.Errorf("create wake window: %w", err)
	}

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Quit(xu)
	}).Connect(c.XUtil, wid)

	return &Waker{conn: c, win: wid}, nil
}

// Wake destroys the wake window. Only the first call has an effect.
func (w *Waker) Wake() error {
	w.once.Do(func() {
		w.err = xproto.DestroyWindowChecked(w.conn.XUtil.Conn(), w.win).Check()
	})
	return w.err
}

// Detach drops the wake window's event handlers.
func (w *Waker) Detach() {
	xevent.Detach(w.conn.XUtil, w.win)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// initXTest loads the XTEST extension once per connection.
func (c *Connection) initXTest() error {
	c.xtestOnce.Do(func() {
		if err := xtest.Init(c.XUtil.Conn()); err != nil {
			c.xtestErr = fmt.Errorf("XTEST extension unavailable: %w", err)
		}
	})
	return c.xtestErr
}
