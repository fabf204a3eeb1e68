package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Keycodes returns the keycodes that produce keysym under the current
// keyboard mapping.
func (c *Connection) Keycodes(keysym string) []xproto.Keycode {
	return keybind.StrToKeycodes(c.XUtil, keysym)
}

// QueryKeymap returns the server's 256-bit pressed-key vector.
func (c *Connection) QueryKeymap() ([]byte, error) {
	reply, err := xproto.QueryKeymap(c.XUtil.Conn()).Reply()
	if err != nil {
		return nil, fmt.Errorf("query keymap: %w", err)
	}
	return reply.Keys, nil
}

// KeyPressed reports whether code is set in a keymap vector.
func KeyPressed(keymap []byte, code xproto.Keycode) bool {
	idx := int(code) / 8
	if idx >= len(keymap) {
		return false
	}
	return keymap[idx]&(1<<(uint(code)%8)) != 0
}

// FakeKey synthesizes a key press or release through XTEST.
func (c *Connection) FakeKey(code xproto.Keycode, press bool) error {
	if err := c.initXTest(); err != nil {
		return err
	}
	eventType := byte(xproto.KeyRelease)
	if press {
		eventType = byte(xproto.KeyPress)
	}
	return xtest.FakeInputChecked(c.XUtil.Conn(), eventType, byte(code), 0, c.Root, 0, 0, 0).Check()
}
