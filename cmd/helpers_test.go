package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/bnema/stretchres/internal/config"
	"github.com/bnema/stretchres/internal/display"
	"github.com/spf13/viper"
)

type applyCall struct {
	device  string
	mode    display.Mode
	persist bool
}

// fakeBackend serves a fixed set of displays and scripted Apply results
type fakeBackend struct {
	devices []display.Descriptor
	modes   map[string]display.Mode
	results []display.ChangeResult
	calls   []applyCall
	closed  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		devices: []display.Descriptor{
			{Index: 0, Name: `\\.\DISPLAY1`, Description: "Panel A", StateFlags: display.StateAttachedToDesktop | display.StatePrimaryDevice},
			{Index: 1, Name: `\\.\DISPLAY2`, Description: "Panel B", StateFlags: display.StateAttachedToDesktop},
		},
		modes: map[string]display.Mode{
			`\\.\DISPLAY1`: {
				DeviceName: `\\.\DISPLAY1`, Width: 2560, Height: 1440, Frequency: 144,
				Fields: display.FieldResolution | display.FieldPosition | display.FieldDisplayFrequency,
			},
			`\\.\DISPLAY2`: {
				DeviceName: `\\.\DISPLAY2`, PositionX: 2560, Width: 1280, Height: 1024, Frequency: 60,
				Fields: display.FieldResolution | display.FieldPosition | display.FieldDisplayFrequency,
			},
		},
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Device(index int) (*display.Descriptor, error) {
	if index < 0 || index >= len(f.devices) {
		return nil, display.ErrNotFound
	}
	d := f.devices[index]
	return &d, nil
}

func (f *fakeBackend) CurrentMode(deviceName string) (display.Mode, error) {
	m, ok := f.modes[deviceName]
	if !ok {
		return display.Mode{}, fmt.Errorf("no mode for %s", deviceName)
	}
	return m, nil
}

func (f *fakeBackend) Apply(deviceName string, mode display.Mode, persist bool) (display.ChangeResult, error) {
	f.calls = append(f.calls, applyCall{device: deviceName, mode: mode, persist: persist})
	if len(f.results) == 0 {
		return display.ChangeSuccessful, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

// useBackend makes every command open b and records the requested names
func useBackend(t *testing.T, b display.Backend) *[]string {
	t.Helper()
	var opened []string
	prev := openBackend
	openBackend = func(name string) (display.Backend, error) {
		opened = append(opened, name)
		return b, nil
	}
	t.Cleanup(func() { openBackend = prev })
	return &opened
}

// isolate points config lookups at an empty temp dir and clears flag state
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("LOG_LEVEL", "")
	xdg.Reload()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(xdg.Reload)

	resetState()
	t.Cleanup(resetState)
	return tmpDir
}

func resetState() {
	viper.Reset()
	config.SetConfigPath("")
	config.Set(nil)

	configFile = ""
	backendFlag = ""
	noPersist = false
	debug = false
	jsonOutput = false
	verbose = false
	_ = configInitCmd.Flags().Set("force", "false")
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}
