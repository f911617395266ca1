package display

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/bnema/stretchres/internal/logger"
)

// Backend is the OS display-configuration surface. Every call goes to the
// OS; implementations must not cache device or mode state between calls.
type Backend interface {
	// Name identifies the backend in logs and config
	Name() string

	// Device enumerates the display at a zero-based ordinal. It returns
	// ErrNotFound when no device exists there.
	Device(index int) (*Descriptor, error)

	// CurrentMode reads the active mode of the named device
	CurrentMode(deviceName string) (Mode, error)

	// Apply requests a mode change. Only fields named by mode.Fields are
	// applied. persist asks the OS to store the change beyond the session
	// where the platform supports it. A rejected change is reported through
	// the result code; the error is reserved for failures to reach the OS.
	Apply(deviceName string, mode Mode, persist bool) (ChangeResult, error)

	Close() error
}

// Backend names accepted by New
const (
	BackendAuto     = "auto"
	BackendWindows  = "windows"
	BackendX11      = "x11"
	BackendWlrRandr = "wlr-randr"
)

var backendFactories = map[string]func() (Backend, error){
	BackendWindows:  newWindowsBackend,
	BackendX11:      newX11Backend,
	BackendWlrRandr: newWlrRandrBackend,
}

// BackendNames lists the explicit backend names in a stable order
func BackendNames() []string {
	return []string{BackendWindows, BackendX11, BackendWlrRandr}
}

// New opens the named backend, or the first usable one for "auto"/""
func New(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == BackendAuto {
		return newAutoBackend()
	}

	factory, ok := backendFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown display backend %q (expected one of: auto, %s)",
			name, strings.Join(BackendNames(), ", "))
	}
	return factory()
}

func newAutoBackend() (Backend, error) {
	_, lookErr := exec.LookPath("wlr-randr")
	candidates := autoCandidates(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY"), os.Getenv("DISPLAY"), lookErr == nil)

	for i, name := range candidates {
		logger.Debugf("display.New: Trying backend %d: %s", i, name)

		backend, err := backendFactories[name]()
		if err == nil {
			logger.Debugf("display.New: Successfully created backend: %s", name)
			return backend, nil
		}
		logger.Debugf("display.New: Backend %s failed: %v", name, err)
	}

	return nil, ErrNoBackend
}

// autoCandidates orders backends by preference for the current session
func autoCandidates(goos, waylandDisplay, x11Display string, haveWlrRandr bool) []string {
	if goos == "windows" {
		return []string{BackendWindows}
	}

	var candidates []string
	if waylandDisplay != "" && haveWlrRandr {
		candidates = append(candidates, BackendWlrRandr)
	}
	if x11Display != "" {
		candidates = append(candidates, BackendX11)
	}
	return candidates
}
