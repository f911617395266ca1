//go:build windows

package display

import (
	"fmt"
	"unsafe"

	"github.com/bnema/stretchres/internal/logger"
	"golang.org/x/sys/windows"
)

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayDevicesW     = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsExW  = user32.NewProc("EnumDisplaySettingsExW")
	procChangeDisplaySettingsEx = user32.NewProc("ChangeDisplaySettingsExW")
)

const (
	enumCurrentSettings = 0xFFFFFFFF // ENUM_CURRENT_SETTINGS
	cdsUpdateRegistry   = 0x00000001 // CDS_UPDATEREGISTRY
)

// windowsBackend drives user32's display-settings API
type windowsBackend struct{}

func newWindowsBackend() (Backend, error) {
	for _, proc := range []*windows.LazyProc{procEnumDisplayDevicesW, procEnumDisplaySettingsExW, procChangeDisplaySettingsEx} {
		if err := proc.Find(); err != nil {
			return nil, fmt.Errorf("user32 %s unavailable: %w", proc.Name, err)
		}
	}
	return &windowsBackend{}, nil
}

func (w *windowsBackend) Name() string {
	return BackendWindows
}

func (w *windowsBackend) Device(index int) (*Descriptor, error) {
	dd := newDisplayDevice()
	ret, _, _ := procEnumDisplayDevicesW.Call(
		0, // all adapters
		uintptr(uint32(index)),
		uintptr(unsafe.Pointer(&dd)),
		0,
	)
	if ret == 0 {
		return nil, fmt.Errorf("%w: ordinal %d", ErrNotFound, index)
	}
	return dd.descriptor(index), nil
}

func (w *windowsBackend) CurrentMode(deviceName string) (Mode, error) {
	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return Mode{}, fmt.Errorf("invalid device name %q: %w", deviceName, err)
	}

	dm := newDevMode()
	ret, _, callErr := procEnumDisplaySettingsExW.Call(
		uintptr(unsafe.Pointer(name)),
		enumCurrentSettings,
		uintptr(unsafe.Pointer(&dm)),
		0,
	)
	if ret == 0 {
		return Mode{}, fmt.Errorf("EnumDisplaySettingsExW(%s) failed: %w", deviceName, callErr)
	}
	return dm.mode(), nil
}

func (w *windowsBackend) Apply(deviceName string, mode Mode, persist bool) (ChangeResult, error) {
	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return ChangeBadParam, fmt.Errorf("invalid device name %q: %w", deviceName, err)
	}

	var flags uintptr
	if persist {
		flags |= cdsUpdateRegistry
	}

	dm := devModeFrom(mode)
	ret, _, _ := procChangeDisplaySettingsEx.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(&dm)),
		0, // hwnd
		flags,
		0, // lParam
	)
	result := ChangeResult(int32(ret))
	logger.Debugf("ChangeDisplaySettingsExW(%s, %s, flags=0x%x) = %d", deviceName, mode, flags, int32(ret))
	return result, nil
}

func (w *windowsBackend) Close() error {
	return nil
}
