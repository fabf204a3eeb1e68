package overlay

import (
	"fmt"

	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/state"
)

// Panel geometry in overlay pixels.
const (
	panelX     = 16
	panelY     = 16
	rowHeight  = 24
	boxSize    = 14
	labelGap   = 8
	fieldWidth = 28
	panelWidth = 200
)

// Rect is an axis-aligned area of the overlay.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type toggle struct {
	label string
	flag  *state.Flag
	box   Rect
}

// Panel is the toggle panel drawn on the overlay. It owns no state of its
// own beyond field focus; every toggle reads and writes the shared flags.
type Panel struct {
	shared  *state.Shared
	toggles []toggle
	custom  toggle
	field   Rect
	status  Rect
	editing bool
}

// NewPanel lays out one checkbox per configured trigger followed by the
// custom-key checkbox and its one-character field.
func NewPanel(shared *state.Shared) *Panel {
	p := &Panel{shared: shared}
	y := panelY
	for _, k := range shared.Triggers() {
		flag, _ := shared.RemapFlag(k)
		p.toggles = append(p.toggles, toggle{
			label: "Remap " + k.String(),
			flag:  flag,
			box:   Rect{X: panelX, Y: y, W: boxSize, H: boxSize},
		})
		y += rowHeight
	}
	p.custom = toggle{
		label: "Custom key",
		flag:  &shared.CustomEnabled,
		box:   Rect{X: panelX, Y: y, W: boxSize, H: boxSize},
	}
	p.field = Rect{X: panelX + panelWidth - fieldWidth, Y: y - 3, W: fieldWidth, H: boxSize + 6}
	y += rowHeight
	p.status = Rect{X: panelX, Y: y, W: panelWidth, H: boxSize}
	return p
}

// Bounds is the area covered by the panel background.
func (p *Panel) Bounds() Rect {
	rows := len(p.toggles) + 2
	return Rect{X: panelX - 8, Y: panelY - 8, W: panelWidth + 16, H: rows*rowHeight + 8}
}

// Click handles a left click at (x, y) and reports whether it hit a control.
// Clicking a checkbox or its label flips the flag; clicking the field gives
// it keyboard focus. Any other click drops field focus.
func (p *Panel) Click(x, y int) bool {
	if p.field.Contains(x, y) {
		p.editing = true
		return true
	}
	p.editing = false
	for _, t := range p.rows() {
		if t.hitArea().Contains(x, y) {
			t.flag.Toggle()
			return true
		}
	}
	return false
}

// Editing reports whether the custom-key field has keyboard focus.
func (p *Panel) Editing() bool {
	return p.editing
}

// Blur drops field focus.
func (p *Panel) Blur() {
	p.editing = false
}

// Type feeds typed characters to the custom-key field. The last letter or
// digit wins; anything else is ignored.
func (p *Panel) Type(chars []rune) {
	if !p.editing {
		return
	}
	for _, r := range chars {
		if k, ok := keys.FromRune(r); ok {
			p.shared.CustomTrigger.Set(k)
		}
	}
}

// Paste sets the custom key from clipboard text. Only a single letter or
// digit, ignoring surrounding whitespace, is accepted.
func (p *Panel) Paste(text []byte) bool {
	if !p.editing {
		return false
	}
	var only rune
	n := 0
	for _, r := range string(text) {
		switch r {
		case ' ', '\t', '\r', '\n':
			continue
		}
		only = r
		n++
	}
	if n != 1 {
		return false
	}
	k, ok := keys.FromRune(only)
	if !ok {
		return false
	}
	p.shared.CustomTrigger.Set(k)
	return true
}

// Erase clears the custom key when the field has focus.
func (p *Panel) Erase() {
	if p.editing {
		p.shared.CustomTrigger.Clear()
	}
}

// StatusText describes the target window as last seen by the tracker.
func (p *Panel) StatusText() string {
	if id := p.shared.Target.Get(); id != 0 {
		return fmt.Sprintf("target 0x%x", uintptr(id))
	}
	return "target not found"
}

// FieldText is what the custom-key field currently shows.
func (p *Panel) FieldText() string {
	if k, ok := p.shared.CustomTrigger.Get(); ok {
		return k.String()
	}
	return ""
}

func (p *Panel) rows() []toggle {
	rows := make([]toggle, 0, len(p.toggles)+1)
	rows = append(rows, p.toggles...)
	return append(rows, p.custom)
}

// hitArea covers the checkbox and the label to its right.
func (t toggle) hitArea() Rect {
	return Rect{X: t.box.X, Y: t.box.Y - 4, W: panelWidth - fieldWidth - labelGap, H: rowHeight}
}
