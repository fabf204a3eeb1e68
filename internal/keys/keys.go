package keys

import (
	"fmt"
	"strings"
	"unicode"
)

// Key is a platform-neutral keyboard key.
type Key int

const (
	Unknown Key = iota
	A
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
	Num0
	Num1
	Num2
	Num3
	Num4
	Num5
	Num6
	Num7
	Num8
	Num9
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	Space
	Return
	Escape
	Tab
	Backspace
	Shift
	Control
	Alt
	Super
)

type info struct {
	name   string
	vk     uint16
	keysym string
}

var (
	table   = map[Key]info{}
	byName  = map[string]Key{}
	byVK    = map[uint16]Key{}
	aliases = map[string]Key{
		"enter": Return,
		"esc":   Escape,
		"ctrl":  Control,
		"win":   Super,
		"mod4":  Super,
		"mod1":  Alt,
		"bksp":  Backspace,
		"spc":   Space,
	}
)

func init() {
	for i := 0; i < 26; i++ {
		r := rune('A' + i)
		register(A+Key(i), info{name: string(r), vk: uint16(r), keysym: string(unicode.ToLower(r))})
	}
	for i := 0; i < 10; i++ {
		r := rune('0' + i)
		register(Num0+Key(i), info{name: string(r), vk: uint16(r), keysym: string(r)})
	}
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("F%d", i+1)
		register(F1+Key(i), info{name: name, vk: uint16(0x70 + i), keysym: name})
	}
	register(Space, info{name: "Space", vk: 0x20, keysym: "space"})
	register(Return, info{name: "Return", vk: 0x0D, keysym: "Return"})
	register(Escape, info{name: "Escape", vk: 0x1B, keysym: "Escape"})
	register(Tab, info{name: "Tab", vk: 0x09, keysym: "Tab"})
	register(Backspace, info{name: "Backspace", vk: 0x08, keysym: "BackSpace"})
	register(Shift, info{name: "Shift", vk: 0x10, keysym: "Shift_L"})
	register(Control, info{name: "Control", vk: 0x11, keysym: "Control_L"})
	register(Alt, info{name: "Alt", vk: 0x12, keysym: "Alt_L"})
	register(Super, info{name: "Super", vk: 0x5B, keysym: "Super_L"})

	// Low-level hooks report the sided virtual-key codes.
	byVK[0xA0], byVK[0xA1] = Shift, Shift
	byVK[0xA2], byVK[0xA3] = Control, Control
	byVK[0xA4], byVK[0xA5] = Alt, Alt
	byVK[0x5C] = Super
}

func register(k Key, i info) {
	table[k] = i
	byName[strings.ToLower(i.name)] = k
	byVK[i.vk] = k
}

// String returns the canonical key name.
func (k Key) String() string {
	if i, ok := table[k]; ok {
		return i.name
	}
	return "Unknown"
}

// VirtualKey returns the Win32 virtual-key code, or 0 for Unknown.
func (k Key) VirtualKey() uint16 {
	return table[k].vk
}

// Keysym returns the X11 keysym name understood by xgbutil/keybind.
func (k Key) Keysym() string {
	return table[k].keysym
}

// IsModifier reports whether k is a modifier key.
func (k Key) IsModifier() bool {
	switch k {
	case Shift, Control, Alt, Super:
		return true
	}
	return false
}

// Parse resolves a key name case-insensitively. Single letters and digits
// parse as themselves.
func Parse(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Unknown, fmt.Errorf("empty key name")
	}
	if k, ok := byName[name]; ok {
		return k, nil
	}
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	return Unknown, fmt.Errorf("unknown key %q", s)
}

// FromRune maps a typed character to its key. Only letters and digits are
// supported.
func FromRune(r rune) (Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return A + Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return A + Key(r-'A'), true
	case r >= '0' && r <= '9':
		return Num0 + Key(r-'0'), true
	}
	return Unknown, false
}

// FromVirtualKey maps a Win32 virtual-key code to a key.
func FromVirtualKey(vk uint16) Key {
	return byVK[vk]
}

// Names returns every canonical key name in declaration order.
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, k := range all {
		names = append(names, k.String())
	}
	return names
}

// All returns every known key in declaration order.
func All() []Key {
	all := make([]Key, 0, len(table))
	for k := A; k <= Super; k++ {
		all = append(all, k)
	}
	return all
}
