//go:build !linux && !windows

package platform

// New opens the backend for the current platform.
func New() (Backend, error) {
	return nil, ErrUnsupported
}
