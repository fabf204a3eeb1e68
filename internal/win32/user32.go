//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	WH_KEYBOARD_LL = 13

	WM_KEYDOWN    = 0x0100
	WM_KEYUP      = 0x0101
	WM_SYSKEYDOWN = 0x0104
	WM_SYSKEYUP   = 0x0105
	WM_HOTKEY     = 0x0312
	WM_QUIT       = 0x0012

	// LLKHF_INJECTED marks events produced by SendInput.
	LLKHF_INJECTED = 0x10

	MOD_NOREPEAT = 0x4000

	INPUT_KEYBOARD  = 1
	KEYEVENTF_KEYUP = 0x0002

	DWMWA_TRANSITIONS_FORCEDISABLED = 3
)

// KBDLLHOOKSTRUCT is passed to low-level keyboard hooks.
type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// KEYBDINPUT is the keyboard member of the INPUT union.
type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT mirrors the Win32 layout: the union is pointer aligned and sized
// like MOUSEINPUT, which is 8 bytes larger than KEYBDINPUT.
type INPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procSetWindowsHookExW     = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx        = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx   = user32.NewProc("UnhookWindowsHookEx")
	procRegisterHotKey        = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey      = user32.NewProc("UnregisterHotKey")
	procPostThreadMessageW    = user32.NewProc("PostThreadMessageW")
	procSendInput             = user32.NewProc("SendInput")
	procIsWindow              = user32.NewProc("IsWindow")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

// SetKeyboardHook installs a WH_KEYBOARD_LL hook. callback must come from
// windows.NewCallback and the calling thread must pump messages.
func SetKeyboardHook(callback uintptr) (windows.Handle, error) {
	h, _, err := procSetWindowsHookExW.Call(WH_KEYBOARD_LL, callback, 0, 0)
	if h == 0 {
		return 0, fmt.Errorf("SetWindowsHookExW: %w", err)
	}
	return windows.Handle(h), nil
}

// CallNextHook passes a hook event on to the next hook in the chain.
func CallNextHook(nCode int, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// Unhook removes a hook installed by SetKeyboardHook.
func Unhook(h windows.Handle) error {
	ret, _, err := procUnhookWindowsHookEx.Call(uintptr(h))
	if ret == 0 {
		return fmt.Errorf("UnhookWindowsHookEx: %w", err)
	}
	return nil
}

// RegisterHotKey registers a thread hotkey delivered as WM_HOTKEY.
func RegisterHotKey(id int, modifiers uint32, vk uint16) error {
	ret, _, err := procRegisterHotKey.Call(0, uintptr(id), uintptr(modifiers), uintptr(vk))
	if ret == 0 {
		return fmt.Errorf("RegisterHotKey: %w", err)
	}
	return nil
}

// UnregisterHotKey releases a hotkey registered on the calling thread.
func UnregisterHotKey(id int) {
	procUnregisterHotKey.Call(0, uintptr(id))
}

// PostQuit posts WM_QUIT to a thread's message queue.
func PostQuit(threadID uint32) error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(threadID), WM_QUIT, 0, 0)
	if ret == 0 {
		return fmt.Errorf("PostThreadMessageW: %w", err)
	}
	return nil
}

// SendKey injects a single key transition for a virtual-key code.
func SendKey(vk uint16, up bool) error {
	in := INPUT{
		Type: INPUT_KEYBOARD,
		Ki:   KEYBDINPUT{WVk: vk},
	}
	if up {
		in.Ki.DwFlags = KEYEVENTF_KEYUP
	}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if ret != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

// IsWindow reports whether hwnd identifies an existing window.
func IsWindow(hwnd uintptr) bool {
	ret, _, _ := procIsWindow.Call(hwnd)
	return ret != 0
}

// DisableTransitions turns off DWM show/hide animations for a window.
func DisableTransitions(hwnd uintptr) error {
	if err := procDwmSetWindowAttribute.Find(); err != nil {
		return err
	}
	var disabled int32 = 1
	ret, _, _ := procDwmSetWindowAttribute.Call(
		hwnd,
		DWMWA_TRANSITIONS_FORCEDISABLED,
		uintptr(unsafe.Pointer(&disabled)),
		unsafe.Sizeof(disabled),
	)
	if ret != 0 {
		return fmt.Errorf("DwmSetWindowAttribute: HRESULT 0x%x", uint32(ret))
	}
	return nil
}
