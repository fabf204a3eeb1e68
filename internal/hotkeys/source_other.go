//go:build !linux && !windows

package hotkeys

import "github.com/1broseidon/railers/internal/platform"

// NewSource opens the hotkey source for the current platform.
func NewSource(platform.Backend) (Source, error) {
	return nil, platform.ErrUnsupported
}
