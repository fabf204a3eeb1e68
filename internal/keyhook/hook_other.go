//go:build !linux && !windows

package keyhook

import "github.com/1broseidon/railers/internal/platform"

// New returns the key source and injector for the current platform.
func New(platform.Backend, Options) (Source, Injector, error) {
	return nil, nil, platform.ErrUnsupported
}
