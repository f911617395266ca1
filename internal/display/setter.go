package display

import (
	"errors"
	"fmt"
	"math"

	"github.com/bnema/stretchres/internal/logger"
)

// Status classifies the outcome of a SetResolution call
type Status int

const (
	StatusApplied Status = iota
	StatusNotFound
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusNotFound:
		return "not found"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is what the operator is told after a resolution change attempt
type Outcome struct {
	Display  int // 1-based display number
	Width    int
	Height   int
	Status   Status
	Result   ChangeResult
	Reverted bool
	Message  string
}

// Options controls how the Setter talks to the backend
type Options struct {
	// Persist stores the change in the OS display configuration
	Persist bool

	// RevertWithoutSnapshot re-applies the zero mode when the current mode
	// could not be read before the change was rejected
	RevertWithoutSnapshot bool
}

// DefaultOptions persists changes and only reverts to a mode it actually read
var DefaultOptions = Options{Persist: true}

// Setter changes one display's resolution and rolls back on rejection
type Setter struct {
	backend Backend
	opts    Options
}

// NewSetter creates a setter over the given backend
func NewSetter(backend Backend, opts Options) *Setter {
	return &Setter{backend: backend, opts: opts}
}

// SetResolution applies width x height to the display at the zero-based
// index. Not-found and rejected changes are reported through the Outcome;
// the error is only set when the backend itself could not be reached.
func (s *Setter) SetResolution(index, width, height int) (Outcome, error) {
	if index < 0 {
		return Outcome{}, fmt.Errorf("%w: display index %d", ErrInvalidArgument, index)
	}
	if width < 1 || height < 1 || width > math.MaxInt32 || height > math.MaxInt32 {
		return Outcome{}, fmt.Errorf("%w: resolution %dx%d", ErrInvalidArgument, width, height)
	}

	out := Outcome{Display: index + 1, Width: width, Height: height}

	device, err := s.backend.Device(index)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			out.Status = StatusNotFound
			out.Message = fmt.Sprintf("Display %d not found.", out.Display)
			return out, nil
		}
		return Outcome{}, fmt.Errorf("failed to enumerate display %d: %w", out.Display, err)
	}
	logger.Debugf("Display %d is %s (%s, flags=%s)", out.Display, device.Name, device.Description, device.StateFlags)

	current, err := s.backend.CurrentMode(device.Name)
	haveSnapshot := err == nil
	if err != nil {
		logger.Warnf("Could not read current settings of %s: %v", device.Name, err)
		current = Mode{}
	} else {
		logger.Debugf("Current mode of %s: %s", device.Name, current)
	}

	requested := RequestedMode(width, height)
	result, err := s.backend.Apply(device.Name, requested, s.opts.Persist)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to change settings of display %d: %w", out.Display, err)
	}
	out.Result = result

	if result == ChangeSuccessful {
		out.Status = StatusApplied
		out.Message = fmt.Sprintf("Display %d resolution changed to %dx%d.", out.Display, width, height)
		logger.Infof("Applied %s to %s", requested, device.Name)
		return out, nil
	}

	out.Status = StatusRejected
	out.Message = fmt.Sprintf("Failed to set resolution for Display %d. Reverting to previous settings.", out.Display)
	logger.Debugf("Mode %s rejected by %s: %s", requested, s.backend.Name(), result)

	if !haveSnapshot && !s.opts.RevertWithoutSnapshot {
		out.Message += " Previous settings unavailable; not reverting."
		return out, nil
	}

	out.Reverted = true
	revertResult, err := s.backend.Apply(device.Name, current, s.opts.Persist)
	if err != nil {
		logger.Debugf("Revert of %s failed: %v", device.Name, err)
	} else {
		logger.Debugf("Revert of %s to %s: %s", device.Name, current, revertResult)
	}

	return out, nil
}
