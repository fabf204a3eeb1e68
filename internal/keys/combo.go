package keys

import (
	"fmt"
	"strings"
)

// Modifier is a bit set of hotkey modifiers.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

var modifierOrder = []struct {
	mod   Modifier
	name  string
	xname string
	win   uint32
}{
	{ModControl, "Ctrl", "control", 0x0002},
	{ModAlt, "Alt", "mod1", 0x0001},
	{ModShift, "Shift", "shift", 0x0004},
	{ModSuper, "Super", "mod4", 0x0008},
}

// Combo is a global hotkey: zero or more modifiers plus one key.
type Combo struct {
	Mods Modifier
	Key  Key
}

// ParseCombo parses sequences such as "Shift-F10" or "ctrl+alt+h".
func ParseCombo(s string) (Combo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '+' })
	if len(parts) == 0 {
		return Combo{}, fmt.Errorf("invalid hotkey %q", s)
	}

	var c Combo
	for _, part := range parts[:len(parts)-1] {
		k, err := Parse(part)
		if err != nil {
			return Combo{}, fmt.Errorf("hotkey %q: %w", s, err)
		}
		mod, ok := modifierFor(k)
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q: %s is not a modifier", s, k)
		}
		c.Mods |= mod
	}

	k, err := Parse(parts[len(parts)-1])
	if err != nil {
		return Combo{}, fmt.Errorf("hotkey %q: %w", s, err)
	}
	if k.IsModifier() {
		return Combo{}, fmt.Errorf("hotkey %q: missing non-modifier key", s)
	}
	c.Key = k
	return c, nil
}

func modifierFor(k Key) (Modifier, bool) {
	switch k {
	case Shift:
		return ModShift, true
	case Control:
		return ModControl, true
	case Alt:
		return ModAlt, true
	case Super:
		return ModSuper, true
	}
	return 0, false
}

// String renders the combo in canonical form, e.g. "Shift-F10".
func (c Combo) String() string {
	var parts []string
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, c.Key.String())
	return strings.Join(parts, "-")
}

// XSequence renders the combo as an xgbutil/keybind key sequence.
func (c Combo) XSequence() string {
	var parts []string
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.xname)
		}
	}
	parts = append(parts, c.Key.Keysym())
	return strings.Join(parts, "-")
}

// WinModifiers returns the MOD_* flags for RegisterHotKey.
func (c Combo) WinModifiers() uint32 {
	var flags uint32
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			flags |= m.win
		}
	}
	return flags
}
