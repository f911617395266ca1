package cmd

import (
	"fmt"

	"github.com/bnema/stretchres/internal/config"
	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/logger"
)

// openBackend is replaced in tests
var openBackend = display.New

// backendName resolves --backend over display.backend
func backendName() string {
	if backendFlag != "" {
		return backendFlag
	}
	return config.Get().Display.Backend
}

func setterOptions() display.Options {
	cfg := config.Get()
	return display.Options{
		Persist:               cfg.Display.Persist && !noPersist,
		RevertWithoutSnapshot: cfg.Display.RevertWithoutSnapshot,
	}
}

func openDisplayBackend() (display.Backend, error) {
	name := backendName()
	backend, err := openBackend(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open display backend %q: %w", name, err)
	}
	logger.Debugf("Using display backend %s", backend.Name())
	return backend, nil
}

// lazySetter opens the backend on the first resolution change, so input
// that never passes validation never touches the OS
type lazySetter struct {
	backend display.Backend
	setter  *display.Setter
}

func newLazySetter() *lazySetter {
	return &lazySetter{}
}

func (l *lazySetter) SetResolution(index, width, height int) (display.Outcome, error) {
	if l.setter == nil {
		backend, err := openDisplayBackend()
		if err != nil {
			return display.Outcome{}, err
		}
		l.backend = backend
		l.setter = display.NewSetter(backend, setterOptions())
	}
	return l.setter.SetResolution(index, width, height)
}

func (l *lazySetter) Close() error {
	if l.backend == nil {
		return nil
	}
	return l.backend.Close()
}
