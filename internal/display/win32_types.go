package display

import "unicode/utf16"

// Fixed-layout mirrors of the user32 DISPLAY_DEVICEW and DEVMODEW records.
// Field order and sizes match the Windows ABI; they are declared without a
// build tag so the layout and conversions are tested on every platform.

const (
	cchDeviceName = 32
	cchFormName   = 32

	displayDeviceWSize = 840
	devModeWSize       = 220
)

type displayDeviceW struct {
	Cb           uint32
	DeviceName   [cchDeviceName]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// devModeW is the display variant of DEVMODEW; the printer/display unions
// are laid out with their display members.
type devModeW struct {
	DeviceName         [cchDeviceName]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [cchFormName]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

const dmSpecVersion = 0x0401

func newDisplayDevice() displayDeviceW {
	return displayDeviceW{Cb: displayDeviceWSize}
}

func newDevMode() devModeW {
	return devModeW{SpecVersion: dmSpecVersion, Size: devModeWSize}
}

func (d *displayDeviceW) descriptor(index int) *Descriptor {
	return &Descriptor{
		Index:       index,
		Name:        utf16BufToString(d.DeviceName[:]),
		Description: utf16BufToString(d.DeviceString[:]),
		StateFlags:  StateFlag(d.StateFlags),
		DeviceID:    utf16BufToString(d.DeviceID[:]),
		DeviceKey:   utf16BufToString(d.DeviceKey[:]),
	}
}

func (dm *devModeW) mode() Mode {
	return Mode{
		DeviceName:   utf16BufToString(dm.DeviceName[:]),
		PositionX:    dm.PositionX,
		PositionY:    dm.PositionY,
		Orientation:  Orientation(dm.DisplayOrientation),
		BitsPerPixel: dm.BitsPerPel,
		Width:        dm.PelsWidth,
		Height:       dm.PelsHeight,
		DisplayFlags: dm.DisplayFlags,
		Frequency:    dm.DisplayFrequency,
		Fields:       Field(dm.Fields),
	}
}

// devModeFrom builds the record passed to ChangeDisplaySettingsExW. Members
// not named by m.Fields stay zero.
func devModeFrom(m Mode) devModeW {
	dm := newDevMode()
	dm.Fields = uint32(m.Fields)
	putUTF16Buf(dm.DeviceName[:], m.DeviceName)

	if m.Fields.Has(FieldPosition) {
		dm.PositionX = m.PositionX
		dm.PositionY = m.PositionY
	}
	if m.Fields.Has(FieldDisplayOrientation) {
		dm.DisplayOrientation = uint32(m.Orientation)
	}
	if m.Fields.Has(FieldBitsPerPel) {
		dm.BitsPerPel = m.BitsPerPixel
	}
	if m.Fields.Has(FieldPelsWidth) {
		dm.PelsWidth = m.Width
	}
	if m.Fields.Has(FieldPelsHeight) {
		dm.PelsHeight = m.Height
	}
	if m.Fields.Has(FieldDisplayFlags) {
		dm.DisplayFlags = m.DisplayFlags
	}
	if m.Fields.Has(FieldDisplayFrequency) {
		dm.DisplayFrequency = m.Frequency
	}
	return dm
}

func utf16BufToString(buf []uint16) string {
	for i, c := range buf {
		if c == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(utf16.Decode(buf))
}

// putUTF16Buf copies s into buf, truncating so a terminating NUL always fits
func putUTF16Buf(buf []uint16, s string) {
	enc := utf16.Encode([]rune(s))
	if len(enc) > len(buf)-1 {
		enc = enc[:len(buf)-1]
	}
	n := copy(buf, enc)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}
