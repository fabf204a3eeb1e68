//go:build windows

package hotkeys

import (
	"context"
	"fmt"
	"runtime"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/win32"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const hotkeyID = 1

// Win32Source registers a thread hotkey and pumps WM_HOTKEY on a locked OS
// thread. Windows reports presses only; MOD_NOREPEAT suppresses repeats.
type Win32Source struct {
	threadID uint32
	done     chan struct{}
}

var _ Source = (*Win32Source)(nil)

// NewSource opens the hotkey source for the current platform.
func NewSource(platform.Backend) (Source, error) {
	return &Win32Source{}, nil
}

// Register starts the message thread and registers combo on it.
func (s *Win32Source) Register(combo keys.Combo, fn func(Event)) error {
	registered := make(chan error, 1)
	s.done = make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(s.done)

		s.threadID = windows.GetCurrentThreadId()
		if err := win32.RegisterHotKey(hotkeyID, combo.WinModifiers()|win32.MOD_NOREPEAT, combo.Key.VirtualKey()); err != nil {
			registered <- fmt.Errorf("register %s: %w", combo, err)
			return
		}
		defer win32.UnregisterHotKey(hotkeyID)
		registered <- nil

		var msg win.MSG
		for win.GetMessage(&msg, 0, 0, 0) > 0 {
			if msg.Message == win32.WM_HOTKEY && msg.WParam == hotkeyID {
				fn(Event{State: Pressed})
			}
		}
	}()

	return <-registered
}

// Run blocks until ctx is cancelled, then stops the message thread.
func (s *Win32Source) Run(ctx context.Context) {
	if s.done == nil {
		return
	}
	select {
	case <-s.done:
		return
	case <-ctx.Done():
	}
	s.Close()
}

// Close stops the message thread if Register started one.
func (s *Win32Source) Close() error {
	if s.done == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	default:
	}
	if err := win32.PostQuit(s.threadID); err != nil {
		return err
	}
	<-s.done
	return nil
}
