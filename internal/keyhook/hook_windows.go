//go:build windows

package keyhook

import (
	"context"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/win32"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// LowLevelHook is a WH_KEYBOARD_LL hook running on its own locked thread.
type LowLevelHook struct {
	threadID uint32
	done     chan struct{}
}

var _ Source = (*LowLevelHook)(nil)

// New returns the key source and injector for the current platform.
func New(_ platform.Backend, _ Options) (Source, Injector, error) {
	return &LowLevelHook{}, SendInputInjector{}, nil
}

// Start installs the hook and begins pumping messages.
func (h *LowLevelHook) Start(fn func(Event)) error {
	installed := make(chan error, 1)
	h.done = make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(h.done)

		h.threadID = windows.GetCurrentThreadId()
		callback := windows.NewCallback(func(nCode int, wParam uintptr, lParam uintptr) uintptr {
			if nCode >= 0 {
				if ev, ok := decode(wParam, (*win32.KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))); ok {
					fn(ev)
				}
			}
			return win32.CallNextHook(nCode, wParam, lParam)
		})

		hook, err := win32.SetKeyboardHook(callback)
		if err != nil {
			installed <- fmt.Errorf("install keyboard hook: %w", err)
			return
		}
		defer win32.Unhook(hook)
		installed <- nil

		var msg win.MSG
		for win.GetMessage(&msg, 0, 0, 0) > 0 {
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
		}
	}()

	return <-installed
}

func decode(wParam uintptr, kb *win32.KBDLLHOOKSTRUCT) (Event, bool) {
	var down bool
	switch wParam {
	case win32.WM_KEYDOWN, win32.WM_SYSKEYDOWN:
		down = true
	case win32.WM_KEYUP, win32.WM_SYSKEYUP:
		down = false
	default:
		return Event{}, false
	}
	key := keys.FromVirtualKey(uint16(kb.VkCode))
	if key == keys.Unknown {
		return Event{}, false
	}
	return Event{
		Key:      key,
		Down:     down,
		Injected: kb.Flags&win32.LLKHF_INJECTED != 0,
	}, true
}

// Run blocks until ctx is cancelled, then removes the hook.
func (h *LowLevelHook) Run(ctx context.Context) {
	if h.done == nil {
		return
	}
	select {
	case <-h.done:
		return
	case <-ctx.Done():
	}
	h.Close()
}

// Close removes the hook if Start installed one.
func (h *LowLevelHook) Close() error {
	if h.done == nil {
		return nil
	}
	select {
	case <-h.done:
		return nil
	default:
	}
	if err := win32.PostQuit(h.threadID); err != nil {
		return err
	}
	<-h.done
	return nil
}

// SendInputInjector synthesizes keys with SendInput.
type SendInputInjector struct{}

func (SendInputInjector) KeyDown(k keys.Key) error {
	return send(k, false)
}

func (SendInputInjector) KeyUp(k keys.Key) error {
	return send(k, true)
}

func send(k keys.Key, up bool) error {
	vk := k.VirtualKey()
	if vk == 0 {
		return fmt.Errorf("no virtual-key code for %s", k)
	}
	return win32.SendKey(vk, up)
}
