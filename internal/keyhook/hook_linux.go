//go:build linux

package keyhook

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// KeymapPoller samples the X server's keyboard state and reports edges. The
// real events still reach the focused client untouched.
type KeymapPoller struct {
	conn     *x11.Connection
	interval time.Duration
	codes    []keycodeKey
	fn       func(Event)
	prev     []byte

	closeOnce sync.Once
}

// keycodeKey maps one keycode to the key it produces.
type keycodeKey struct {
	code xproto.Keycode
	key  keys.Key
}

var _ Source = (*KeymapPoller)(nil)

type connectionProvider interface {
	Connection() *x11.Connection
}

// New returns the key source and injector for the current platform. The
// poller uses its own X connection; injection shares the backend's.
func New(backend platform.Backend, opts Options) (Source, Injector, error) {
	provider, ok := backend.(connectionProvider)
	if !ok || provider.Connection() == nil {
		return nil, nil, fmt.Errorf("key hook requires an X11 backend")
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &KeymapPoller{conn: conn, interval: interval}, &XTestInjector{conn: provider.Connection()}, nil
}

// Start builds the keycode table and takes the initial keyboard snapshot.
func (p *KeymapPoller) Start(fn func(Event)) error {
	seen := make(map[xproto.Keycode]bool)
	p.codes = p.codes[:0]
	for _, k := range keys.All() {
		for _, code := range p.conn.Keycodes(k.Keysym()) {
			if !seen[code] {
				seen[code] = true
				p.codes = append(p.codes, keycodeKey{code: code, key: k})
			}
		}
	}
	sort.Slice(p.codes, func(i, j int) bool { return p.codes[i].code < p.codes[j].code })
	if len(p.codes) == 0 {
		return fmt.Errorf("no keycodes resolved from the keyboard mapping")
	}

	keymap, err := p.conn.QueryKeymap()
	if err != nil {
		return err
	}
	p.prev = keymap
	p.fn = fn
	return nil
}

// Run polls the keymap until ctx is cancelled.
func (p *KeymapPoller) Run(ctx context.Context) {
	defer p.Close()
	if p.fn == nil {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			keymap, err := p.conn.QueryKeymap()
			if err != nil {
				continue
			}
			diffKeymaps(p.prev, keymap, p.codes, p.fn)
			p.prev = keymap
		}
	}
}

// Close closes the poller's X connection.
func (p *KeymapPoller) Close() error {
	p.closeOnce.Do(p.conn.Close)
	return nil
}

// diffKeymaps reports every mapped keycode whose state differs, in keycode
// order.
func diffKeymaps(prev, cur []byte, codes []keycodeKey, fn func(Event)) {
	for _, m := range codes {
		was := x11.KeyPressed(prev, m.code)
		now := x11.KeyPressed(cur, m.code)
		if was != now {
			fn(Event{Key: m.key, Down: now})
		}
	}
}

// XTestInjector synthesizes keys with the XTEST extension.
type XTestInjector struct {
	conn *x11.Connection
}

func (x *XTestInjector) KeyDown(k keys.Key) error {
	return x.fake(k, true)
}

func (x *XTestInjector) KeyUp(k keys.Key) error {
	return x.fake(k, false)
}

func (x *XTestInjector) fake(k keys.Key, press bool) error {
	codes := x.conn.Keycodes(k.Keysym())
	if len(codes) == 0 {
		return fmt.Errorf("no keycode for %s", k)
	}
	return x.conn.FakeKey(codes[0], press)
}
