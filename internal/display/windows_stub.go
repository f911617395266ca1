//go:build !windows

package display

func newWindowsBackend() (Backend, error) {
	return nil, ErrUnsupported
}
