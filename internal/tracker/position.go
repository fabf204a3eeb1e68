package tracker

import "github.com/1broseidon/railers/internal/platform"

// Insets trim the target's outer box down to its client area.
type Insets struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultInsets match a standard Windows title bar and border.
var DefaultInsets = Insets{Left: 8, Top: 31, Width: 16, Height: 39}

// Apply returns the overlay placement for a target box.
func (in Insets) Apply(b platform.Bounds) platform.Rect {
	return platform.Rect{
		X:      b.Left + in.Left,
		Y:      b.Top + in.Top,
		Width:  b.Width() - in.Width,
		Height: b.Height() - in.Height,
	}
}

// Mover moves and resizes windows.
type Mover interface {
	MoveResize(id platform.WindowID, r platform.Rect) error
}

// unsynced never equals a real window box, so the first sync always moves.
var unsynced = platform.Bounds{Left: 1, Right: 0}

// SyncPosition moves the overlay when the target box differs from previous
// and returns the box to compare against next time. No call is made when the
// box is unchanged. On failure previous is returned so the move is retried.
func SyncPosition(m Mover, overlay platform.WindowID, target, previous platform.Bounds, insets Insets) (platform.Bounds, error) {
	if target == previous {
		return previous, nil
	}
	if err := m.MoveResize(overlay, insets.Apply(target)); err != nil {
		return previous, err
	}
	return target, nil
}
