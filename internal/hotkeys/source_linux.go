//go:build linux

package hotkeys

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// X11Source grabs hotkeys on the root window of a dedicated X connection so
// its event loop never competes with window queries.
type X11Source struct {
	conn  *x11.Connection
	waker *x11.Waker

	closeOnce sync.Once
}

var _ Source = (*X11Source)(nil)

var ignoreModsOnce sync.Once

// NewSource opens the hotkey source for the current platform.
func NewSource(platform.Backend) (Source, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	waker, err := conn.NewWaker()
	if err != nil {
		conn.Close()
		return nil, err
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &X11Source{conn: conn, waker: waker}, nil
}

// Register grabs the key sequence and reports presses and releases.
// Auto-repeat presses, which share a timestamp with the preceding release,
// are dropped.
func (s *X11Source) Register(combo keys.Combo, fn func(Event)) error {
	seq := combo.XSequence()
	var lastRelease xproto.Timestamp

	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if ev.Time != 0 && ev.Time == lastRelease {
			return
		}
		fn(Event{State: Pressed})
	}).Connect(s.conn.XUtil, s.conn.Root, seq, true)
	if err != nil {
		return fmt.Errorf("grab %s: %w", combo, err)
	}

	err = keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		lastRelease = ev.Time
		fn(Event{State: Released})
	}).Connect(s.conn.XUtil, s.conn.Root, seq, true)
	if err != nil {
		return fmt.Errorf("grab %s release: %w", combo, err)
	}
	return nil
}

// Run processes X events until ctx is cancelled, then closes the connection.
func (s *X11Source) Run(ctx context.Context) {
	runUntilDone(ctx, s.conn.EventLoop, func() {
		// On failure the loop stays parked until the next hotkey event.
		s.waker.Wake()
	})
	keybind.Detach(s.conn.XUtil, s.conn.Root)
	s.waker.Detach()
	s.Close()
}

// Close closes the source's X connection.
func (s *X11Source) Close() error {
	s.closeOnce.Do(s.conn.Close)
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
