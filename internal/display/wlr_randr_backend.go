package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/stretchres/internal/logger"
)

// commandRunner runs wlr-randr with args. err is only set when the command
// could not be started; a non-zero exit is reported through exitCode.
type commandRunner func(args ...string) (output []byte, exitCode int, err error)

// wlrRandrBackend drives wlroots compositors through the wlr-randr tool.
// Changes made this way last for the compositor session only.
type wlrRandrBackend struct {
	run commandRunner
}

func newWlrRandrBackend() (Backend, error) {
	// Check if wlr-randr is available
	if _, err := exec.LookPath("wlr-randr"); err != nil {
		return nil, fmt.Errorf("wlr-randr not found. Please install wlr-randr: https://gitlab.freedesktop.org/emersion/wlr-randr")
	}

	return &wlrRandrBackend{run: execWlrRandr}, nil
}

func execWlrRandr(args ...string) ([]byte, int, error) {
	cmd := exec.Command("wlr-randr", args...)
	cmd.Env = wlrRandrEnv()

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, exitErr.ExitCode(), nil
		}
		return output, -1, fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return output, 0, nil
}

// wlrRandrEnv returns the environment for wlr-randr. Under sudo the Wayland
// socket belongs to the invoking user, so point the tool at it.
func wlrRandrEnv() []string {
	env := os.Environ()

	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" || os.Geteuid() != 0 {
		return env
	}
	logger.Debugf("Running wlr-randr with sudo, SUDO_USER=%s", sudoUser)

	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" {
		uidCmd := exec.Command("id", "-u", sudoUser)
		if uidOutput, err := uidCmd.Output(); err == nil {
			sudoUID = strings.TrimSpace(string(uidOutput))
		}
	}

	xdgRuntimeDir := fmt.Sprintf("/run/user/%s", sudoUID)
	env = append(env, fmt.Sprintf("XDG_RUNTIME_DIR=%s", xdgRuntimeDir))
	logger.Debugf("Setting XDG_RUNTIME_DIR=%s", xdgRuntimeDir)

	// Detect WAYLAND_DISPLAY by looking at the socket files
	waylandDisplay := ""
	if files, err := os.ReadDir(xdgRuntimeDir); err == nil {
		for _, file := range files {
			if strings.HasPrefix(file.Name(), "wayland-") && !strings.HasSuffix(file.Name(), ".lock") {
				waylandDisplay = file.Name()
				break
			}
		}
	} else {
		logger.Warnf("Could not read socket directory %s: %v", xdgRuntimeDir, err)
	}

	if waylandDisplay != "" {
		env = append(env, fmt.Sprintf("WAYLAND_DISPLAY=%s", waylandDisplay))
		logger.Debugf("Detected WAYLAND_DISPLAY=%s", waylandDisplay)
	} else if existing := os.Getenv("WAYLAND_DISPLAY"); existing == "" {
		logger.Warn("Could not detect WAYLAND_DISPLAY for sudo session")
	}
	return env
}

type wlrOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
	Enabled     bool   `json:"enabled"`
	Modes       []struct {
		Width     int     `json:"width"`
		Height    int     `json:"height"`
		Refresh   float64 `json:"refresh"`
		Preferred bool    `json:"preferred"`
		Current   bool    `json:"current"`
	} `json:"modes"`
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Transform string  `json:"transform"`
	Scale     float64 `json:"scale"`
}

func (w *wlrRandrBackend) Name() string {
	return BackendWlrRandr
}

func (w *wlrRandrBackend) outputs() ([]wlrOutput, error) {
	output, code, err := w.run("--json")
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("wlr-randr --json exited with %d: %s", code, strings.TrimSpace(string(output)))
	}
	logger.Debugf("wlr-randr --json output: %s", string(output))

	var outputs []wlrOutput
	if err := json.Unmarshal(output, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse wlr-randr output: %w", err)
	}
	return outputs, nil
}

func (w *wlrRandrBackend) findOutput(deviceName string) (*wlrOutput, error) {
	outputs, err := w.outputs()
	if err != nil {
		return nil, err
	}
	for i := range outputs {
		if outputs[i].Name == deviceName {
			return &outputs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: output %s", ErrNotFound, deviceName)
}

func (w *wlrRandrBackend) Device(index int) (*Descriptor, error) {
	outputs, err := w.outputs()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(outputs) {
		return nil, fmt.Errorf("%w: ordinal %d", ErrNotFound, index)
	}

	primary := primaryOutput(outputs)
	out := outputs[index]

	var flags StateFlag
	if out.Enabled {
		flags |= StateAttachedToDesktop
	}
	if index == primary {
		flags |= StatePrimaryDevice
	}

	description := out.Description
	if description == "" {
		description = strings.TrimSpace(out.Make + " " + out.Model)
	}

	return &Descriptor{
		Index:       index,
		Name:        out.Name,
		Description: description,
		StateFlags:  flags,
		DeviceID:    strings.TrimSpace(strings.Join([]string{out.Make, out.Model, out.Serial}, " ")),
	}, nil
}

// primaryOutput picks the enabled output at (0,0), falling back to the first
// enabled one. Wayland has no primary output of its own.
func primaryOutput(outputs []wlrOutput) int {
	first := -1
	for i, out := range outputs {
		if !out.Enabled {
			continue
		}
		if out.Position.X == 0 && out.Position.Y == 0 {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

func (w *wlrRandrBackend) CurrentMode(deviceName string) (Mode, error) {
	out, err := w.findOutput(deviceName)
	if err != nil {
		return Mode{}, err
	}
	if !out.Enabled {
		return Mode{}, fmt.Errorf("output %s is disabled", deviceName)
	}

	for _, m := range out.Modes {
		if !m.Current {
			continue
		}
		mode := Mode{
			DeviceName:  out.Name,
			PositionX:   int32(out.Position.X),
			PositionY:   int32(out.Position.Y),
			Orientation: transformToOrientation(out.Transform),
			Width:       uint32(m.Width),
			Height:      uint32(m.Height),
			Fields:      FieldPosition | FieldDisplayOrientation | FieldResolution,
		}
		if m.Refresh > 0 {
			mode.Frequency = uint32(math.Round(m.Refresh))
			mode.Fields |= FieldDisplayFrequency
		}
		return mode, nil
	}
	return Mode{}, fmt.Errorf("output %s reports no current mode", deviceName)
}

// applyArgs builds the wlr-randr arguments for the fields set in mode
func applyArgs(deviceName string, mode Mode) []string {
	args := []string{"--output", deviceName}
	if mode.Fields.Has(FieldResolution) {
		modeArg := fmt.Sprintf("%dx%d", mode.Width, mode.Height)
		if mode.Fields.Has(FieldDisplayFrequency) && mode.Frequency > 0 {
			modeArg += fmt.Sprintf("@%dHz", mode.Frequency)
		}
		args = append(args, "--mode", modeArg)
	}
	if mode.Fields.Has(FieldPosition) {
		args = append(args, "--pos", fmt.Sprintf("%d,%d", mode.PositionX, mode.PositionY))
	}
	return args
}

func (w *wlrRandrBackend) Apply(deviceName string, mode Mode, persist bool) (ChangeResult, error) {
	if !mode.Fields.Has(FieldResolution) && !mode.Fields.Has(FieldPosition) {
		return ChangeBadParam, nil
	}
	if persist {
		logger.Debug("wlr-randr changes last for the compositor session only; persist ignored")
	}

	args := applyArgs(deviceName, mode)
	output, code, err := w.run(args...)
	if err != nil {
		return ChangeFailed, err
	}
	if code != 0 {
		logger.Debugf("wlr-randr %s exited with %d: %s", strings.Join(args, " "), code, strings.TrimSpace(string(output)))
		return ChangeFailed, nil
	}
	return ChangeSuccessful, nil
}

func (w *wlrRandrBackend) Close() error {
	return nil
}

func transformToOrientation(transform string) Orientation {
	switch transform {
	case "90", "flipped-90":
		return Orientation90
	case "180", "flipped-180":
		return Orientation180
	case "270", "flipped-270":
		return Orientation270
	default:
		return OrientationDefault
	}
}
