// Package display enumerates display devices and changes their resolution
package display

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no display exists at the requested ordinal
	ErrNotFound = errors.New("display not found")

	// ErrUnsupported is returned by backends that cannot run on this platform
	ErrUnsupported = errors.New("display backend not supported on this platform")

	// ErrNoBackend is returned when auto-detection finds no usable backend
	ErrNoBackend = errors.New("no display backend available")

	// ErrInvalidArgument is returned for negative ordinals and non-positive sizes
	ErrInvalidArgument = errors.New("invalid argument")
)

// StateFlag describes the state of a display adapter as reported by the OS
type StateFlag uint32

const (
	StateAttachedToDesktop StateFlag = 0x00000001
	StateMultiDriver       StateFlag = 0x00000002
	StatePrimaryDevice     StateFlag = 0x00000004
	StateMirroringDriver   StateFlag = 0x00000008
	StateVGACompatible     StateFlag = 0x00000010
	StateRemovable         StateFlag = 0x00000020
	StateDisconnect        StateFlag = 0x02000000
	StateRemote            StateFlag = 0x04000000
	StateModesPruned       StateFlag = 0x08000000
)

var stateFlagNames = []struct {
	flag StateFlag
	name string
}{
	{StateAttachedToDesktop, "attached"},
	{StateMultiDriver, "multi-driver"},
	{StatePrimaryDevice, "primary"},
	{StateMirroringDriver, "mirroring"},
	{StateVGACompatible, "vga"},
	{StateRemovable, "removable"},
	{StateDisconnect, "disconnect"},
	{StateRemote, "remote"},
	{StateModesPruned, "modes-pruned"},
}

// Has reports whether all bits of f are set
func (s StateFlag) Has(f StateFlag) bool {
	return s&f == f
}

func (s StateFlag) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	rest := s
	for _, n := range stateFlagNames {
		if s.Has(n.flag) {
			names = append(names, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, ",")
}

// Descriptor identifies one display adapter. It is read fresh for every
// lookup and never cached.
type Descriptor struct {
	Index       int
	Name        string // opaque device name passed back to the backend
	Description string
	StateFlags  StateFlag
	DeviceID    string
	DeviceKey   string
}

// Primary reports whether the OS marks this device as the primary display
func (d *Descriptor) Primary() bool {
	return d.StateFlags.Has(StatePrimaryDevice)
}

// Attached reports whether the device is part of the desktop
func (d *Descriptor) Attached() bool {
	return d.StateFlags.Has(StateAttachedToDesktop)
}

// Field is a bitmask declaring which Mode members are meaningful
type Field uint32

const (
	FieldPosition           Field = 0x00000020
	FieldDisplayOrientation Field = 0x00000080
	FieldBitsPerPel         Field = 0x00040000
	FieldPelsWidth          Field = 0x00080000
	FieldPelsHeight         Field = 0x00100000
	FieldDisplayFlags       Field = 0x00200000
	FieldDisplayFrequency   Field = 0x00400000

	// FieldResolution is the mask of a resolution-only change request
	FieldResolution = FieldPelsWidth | FieldPelsHeight
)

// Has reports whether all bits of f are set
func (f Field) Has(other Field) bool {
	return f&other == other
}

// Orientation is the display rotation in 90 degree steps
type Orientation uint32

const (
	OrientationDefault Orientation = iota
	Orientation90
	Orientation180
	Orientation270
)

func (o Orientation) String() string {
	switch o {
	case Orientation90:
		return "90"
	case Orientation180:
		return "180"
	case Orientation270:
		return "270"
	default:
		return "normal"
	}
}

// Mode is a snapshot of display settings. Only members named by Fields are
// applied by a backend; the rest are ignored even when non-zero.
type Mode struct {
	DeviceName   string
	PositionX    int32
	PositionY    int32
	Orientation  Orientation
	BitsPerPixel uint32
	Width        uint32
	Height       uint32
	DisplayFlags uint32
	Frequency    uint32
	Fields       Field
}

// RequestedMode builds a mode that changes the resolution and nothing else
func RequestedMode(width, height int) Mode {
	return Mode{
		Width:  uint32(width),
		Height: uint32(height),
		Fields: FieldResolution,
	}
}

// IsZero reports whether the mode carries no settings at all
func (m Mode) IsZero() bool {
	return m.Fields == 0 && m.Width == 0 && m.Height == 0
}

func (m Mode) String() string {
	s := fmt.Sprintf("%dx%d", m.Width, m.Height)
	if m.Fields.Has(FieldDisplayFrequency) && m.Frequency > 0 {
		s += fmt.Sprintf("@%dHz", m.Frequency)
	}
	return s
}

// ChangeResult is the result code of a mode change, using the Win32
// DISP_CHANGE_* values on every backend.
type ChangeResult int32

const (
	ChangeSuccessful  ChangeResult = 0
	ChangeRestart     ChangeResult = 1
	ChangeFailed      ChangeResult = -1
	ChangeBadMode     ChangeResult = -2
	ChangeNotUpdated  ChangeResult = -3
	ChangeBadFlags    ChangeResult = -4
	ChangeBadParam    ChangeResult = -5
	ChangeBadDualView ChangeResult = -6
)

func (r ChangeResult) String() string {
	switch r {
	case ChangeSuccessful:
		return "successful"
	case ChangeRestart:
		return "restart required"
	case ChangeFailed:
		return "failed"
	case ChangeBadMode:
		return "mode not supported"
	case ChangeNotUpdated:
		return "registry not updated"
	case ChangeBadFlags:
		return "bad flags"
	case ChangeBadParam:
		return "bad parameter"
	case ChangeBadDualView:
		return "dualview conflict"
	default:
		return fmt.Sprintf("result %d", int32(r))
	}
}
