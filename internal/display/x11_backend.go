package display

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/bnema/stretchres/internal/logger"
)

// x11Backend changes CRTC modes through the RandR extension. X has no
// persistent store, so the persist flag is ignored.
type x11Backend struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

func newX11Backend() (Backend, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("DISPLAY is not set")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &x11Backend{xu: xu, root: xu.RootWin()}, nil
}

func (x *x11Backend) Name() string {
	return BackendX11
}

type x11Output struct {
	id   randr.Output
	info *randr.GetOutputInfoReply
}

// connectedOutputs lists outputs with a monitor attached, in server order.
// Every call re-queries the server.
func (x *x11Backend) connectedOutputs() (*randr.GetScreenResourcesReply, []x11Output, error) {
	resources, err := randr.GetScreenResources(x.xu.Conn(), x.root).Reply()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []x11Output
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(x.xu.Conn(), id, resources.ConfigTimestamp).Reply()
		if err != nil {
			logger.Debugf("Skipping output %d: %v", id, err)
			continue
		}
		if info.Connection != randr.ConnectionConnected {
			continue
		}
		outputs = append(outputs, x11Output{id: id, info: info})
	}
	return resources, outputs, nil
}

func (x *x11Backend) findOutput(deviceName string) (*randr.GetScreenResourcesReply, *x11Output, error) {
	resources, outputs, err := x.connectedOutputs()
	if err != nil {
		return nil, nil, err
	}
	for i := range outputs {
		if string(outputs[i].info.Name) == deviceName {
			return resources, &outputs[i], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: output %s", ErrNotFound, deviceName)
}

func (x *x11Backend) Device(index int) (*Descriptor, error) {
	_, outputs, err := x.connectedOutputs()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(outputs) {
		return nil, fmt.Errorf("%w: ordinal %d", ErrNotFound, index)
	}

	out := outputs[index]
	var flags StateFlag
	if out.info.Crtc != 0 {
		flags |= StateAttachedToDesktop
	}
	if primary, err := randr.GetOutputPrimary(x.xu.Conn(), x.root).Reply(); err == nil && primary.Output == out.id {
		flags |= StatePrimaryDevice
	}

	name := string(out.info.Name)
	return &Descriptor{
		Index:       index,
		Name:        name,
		Description: fmt.Sprintf("RandR output %s (%dx%d mm)", name, out.info.MmWidth, out.info.MmHeight),
		StateFlags:  flags,
		DeviceID:    fmt.Sprintf("%d", out.id),
	}, nil
}

func (x *x11Backend) CurrentMode(deviceName string) (Mode, error) {
	resources, out, err := x.findOutput(deviceName)
	if err != nil {
		return Mode{}, err
	}
	if out.info.Crtc == 0 {
		return Mode{}, fmt.Errorf("output %s is not driving a CRTC", deviceName)
	}

	crtc, err := randr.GetCrtcInfo(x.xu.Conn(), out.info.Crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return Mode{}, fmt.Errorf("failed to get CRTC info for %s: %w", deviceName, err)
	}

	mode := Mode{
		DeviceName:  deviceName,
		PositionX:   int32(crtc.X),
		PositionY:   int32(crtc.Y),
		Orientation: rotationToOrientation(crtc.Rotation),
		Fields:      FieldPosition | FieldDisplayOrientation | FieldResolution,
	}
	if info, ok := findModeInfo(resources.Modes, crtc.Mode); ok {
		mode.Width = uint32(info.Width)
		mode.Height = uint32(info.Height)
		if hz := refreshRate(info); hz > 0 {
			mode.Frequency = hz
			mode.Fields |= FieldDisplayFrequency
		}
	} else {
		mode.Width = uint32(crtc.Width)
		mode.Height = uint32(crtc.Height)
	}
	return mode, nil
}

func (x *x11Backend) Apply(deviceName string, mode Mode, persist bool) (ChangeResult, error) {
	resources, out, err := x.findOutput(deviceName)
	if errors.Is(err, ErrNotFound) {
		return ChangeBadParam, nil
	}
	if err != nil {
		return ChangeFailed, err
	}
	if out.info.Crtc == 0 {
		logger.Debugf("Output %s has no CRTC; cannot change mode", deviceName)
		return ChangeFailed, nil
	}
	if !mode.Fields.Has(FieldResolution) {
		return ChangeBadParam, nil
	}

	crtc, err := randr.GetCrtcInfo(x.xu.Conn(), out.info.Crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return ChangeFailed, fmt.Errorf("failed to get CRTC info for %s: %w", deviceName, err)
	}

	var frequency uint32
	if mode.Fields.Has(FieldDisplayFrequency) {
		frequency = mode.Frequency
	}
	target, ok := pickMode(resources.Modes, out.info.Modes, mode.Width, mode.Height, frequency)
	if !ok {
		logger.Debugf("Output %s has no %s mode", deviceName, mode)
		return ChangeBadMode, nil
	}

	posX, posY := crtc.X, crtc.Y
	if mode.Fields.Has(FieldPosition) {
		posX, posY = int16(mode.PositionX), int16(mode.PositionY)
	}
	rotation := crtc.Rotation
	if mode.Fields.Has(FieldDisplayOrientation) {
		rotation = orientationToRotation(mode.Orientation)
	}

	if persist {
		logger.Debug("X11 mode changes last for the session only; persist ignored")
	}

	// The new CRTC must fit the screen, so grow it first and shrink it to
	// the bounding box of all CRTCs afterwards
	targetInfo, _ := findModeInfo(resources.Modes, target)
	extents, err := x.otherCrtcExtents(resources, out.info.Crtc)
	if err != nil {
		return ChangeFailed, err
	}
	extents = append(extents, crtcExtent(posX, posY, targetInfo.Width, targetInfo.Height, rotation))
	needW, needH := screenExtent(extents)

	geom, err := xproto.GetGeometry(x.xu.Conn(), xproto.Drawable(x.root)).Reply()
	if err != nil {
		return ChangeFailed, fmt.Errorf("failed to get screen geometry: %w", err)
	}
	limits, err := randr.GetScreenSizeRange(x.xu.Conn(), x.root).Reply()
	if err != nil {
		return ChangeFailed, fmt.Errorf("failed to get screen size range: %w", err)
	}

	plan, ok := planScreen(uint32(geom.Width), uint32(geom.Height), needW, needH, screenLimits{
		minW: uint32(limits.MinWidth), minH: uint32(limits.MinHeight),
		maxW: uint32(limits.MaxWidth), maxH: uint32(limits.MaxHeight),
	})
	if !ok {
		logger.Debugf("Screen of %dx%d needed for %s exceeds the %dx%d limit", needW, needH, mode, limits.MaxWidth, limits.MaxHeight)
		return ChangeBadMode, nil
	}

	if plan.grows() {
		if err := x.setScreenSize(plan.growW, plan.growH); err != nil {
			logger.Debugf("Growing screen to %dx%d failed: %v", plan.growW, plan.growH, err)
			return ChangeFailed, nil
		}
	}

	reply, err := randr.SetCrtcConfig(x.xu.Conn(), out.info.Crtc, xproto.TimeCurrentTime,
		resources.ConfigTimestamp, posX, posY, target, rotation, crtc.Outputs).Reply()
	if err == nil && reply.Status != randr.SetConfigSuccess {
		err = fmt.Errorf("status %d", reply.Status)
	}
	if err != nil {
		// The server answers impossible configurations with an X error
		logger.Debugf("SetCrtcConfig(%s, %s) rejected: %v", deviceName, mode, err)
		if plan.grows() {
			if err := x.setScreenSize(plan.curW, plan.curH); err != nil {
				logger.Warnf("Could not restore screen size %dx%d: %v", plan.curW, plan.curH, err)
			}
		}
		return ChangeFailed, nil
	}

	if plan.shrinks() {
		if err := x.setScreenSize(plan.finalW, plan.finalH); err != nil {
			logger.Warnf("Could not shrink screen to %dx%d: %v", plan.finalW, plan.finalH, err)
		}
	}
	return ChangeSuccessful, nil
}

// otherCrtcExtents returns the screen area used by every enabled CRTC
// except skip
func (x *x11Backend) otherCrtcExtents(resources *randr.GetScreenResourcesReply, skip randr.Crtc) ([]extent, error) {
	var extents []extent
	for _, id := range resources.Crtcs {
		if id == skip {
			continue
		}
		info, err := randr.GetCrtcInfo(x.xu.Conn(), id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get CRTC info for %d: %w", id, err)
		}
		if info.Mode == 0 {
			continue
		}
		// CRTC info already reports the rotated size
		extents = append(extents, extent{x: int32(info.X), y: int32(info.Y), w: uint32(info.Width), h: uint32(info.Height)})
	}
	return extents, nil
}

func (x *x11Backend) setScreenSize(width, height uint32) error {
	setup := x.xu.Screen()
	mmW := millimeters(width, setup.WidthInPixels, setup.WidthInMillimeters)
	mmH := millimeters(height, setup.HeightInPixels, setup.HeightInMillimeters)
	logger.Debugf("Setting X screen size to %dx%d (%dx%d mm)", width, height, mmW, mmH)
	return randr.SetScreenSizeChecked(x.xu.Conn(), x.root, uint16(width), uint16(height), mmW, mmH).Check()
}

func (x *x11Backend) Close() error {
	x.xu.Conn().Close()
	return nil
}

func findModeInfo(modes []randr.ModeInfo, id randr.Mode) (randr.ModeInfo, bool) {
	for _, m := range modes {
		if randr.Mode(m.Id) == id {
			return m, true
		}
	}
	return randr.ModeInfo{}, false
}

// refreshRate returns the vertical refresh in whole hertz, rounded
func refreshRate(m randr.ModeInfo) uint32 {
	total := uint64(m.Htotal) * uint64(m.Vtotal)
	if total == 0 {
		return 0
	}
	return uint32((uint64(m.DotClock) + total/2) / total)
}

// pickMode selects among an output's modes the first one with the given
// size. With a non-zero frequency the closest refresh rate wins.
func pickMode(all []randr.ModeInfo, candidates []randr.Mode, width, height, frequency uint32) (randr.Mode, bool) {
	var (
		best     randr.Mode
		bestDiff int64 = -1
	)
	for _, id := range candidates {
		info, ok := findModeInfo(all, id)
		if !ok || uint32(info.Width) != width || uint32(info.Height) != height {
			continue
		}
		if frequency == 0 {
			return id, true
		}
		diff := int64(refreshRate(info)) - int64(frequency)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = id, diff
		}
	}
	return best, bestDiff >= 0
}

func rotationToOrientation(rotation uint16) Orientation {
	switch {
	case rotation&randr.RotationRotate90 != 0:
		return Orientation90
	case rotation&randr.RotationRotate180 != 0:
		return Orientation180
	case rotation&randr.RotationRotate270 != 0:
		return Orientation270
	default:
		return OrientationDefault
	}
}

func orientationToRotation(o Orientation) uint16 {
	switch o {
	case Orientation90:
		return randr.RotationRotate90
	case Orientation180:
		return randr.RotationRotate180
	case Orientation270:
		return randr.RotationRotate270
	default:
		return randr.RotationRotate0
	}
}

// extent is the screen area covered by one CRTC
type extent struct {
	x, y int32
	w, h uint32
}

// crtcExtent returns the area a mode covers at a position, swapping the
// sides for quarter turns
func crtcExtent(x, y int16, width, height uint16, rotation uint16) extent {
	w, h := uint32(width), uint32(height)
	if rotation&(randr.RotationRotate90|randr.RotationRotate270) != 0 {
		w, h = h, w
	}
	return extent{x: int32(x), y: int32(y), w: w, h: h}
}

// screenExtent is the smallest screen anchored at the origin that holds
// every extent
func screenExtent(extents []extent) (width, height uint32) {
	for _, e := range extents {
		if right := e.x + int32(e.w); right > 0 && uint32(right) > width {
			width = uint32(right)
		}
		if bottom := e.y + int32(e.h); bottom > 0 && uint32(bottom) > height {
			height = uint32(bottom)
		}
	}
	return width, height
}

type screenLimits struct {
	minW, minH, maxW, maxH uint32
}

// screenPlan sizes the screen around one CRTC change: grow to growW x growH
// before it, shrink to finalW x finalH after it
type screenPlan struct {
	curW, curH     uint32
	growW, growH   uint32
	finalW, finalH uint32
}

func (p screenPlan) grows() bool {
	return p.growW != p.curW || p.growH != p.curH
}

func (p screenPlan) shrinks() bool {
	return p.finalW != p.growW || p.finalH != p.growH
}

// planScreen returns false when the needed screen is larger than the server
// allows
func planScreen(curW, curH, needW, needH uint32, limits screenLimits) (screenPlan, bool) {
	needW, needH = max(needW, limits.minW), max(needH, limits.minH)
	if needW > limits.maxW || needH > limits.maxH {
		return screenPlan{}, false
	}
	return screenPlan{
		curW: curW, curH: curH,
		growW: max(curW, needW), growH: max(curH, needH),
		finalW: needW, finalH: needH,
	}, true
}

// millimeters scales a pixel size by the screen's initial DPI, falling back
// to 96 DPI when the server reports none
func millimeters(px uint32, refPx, refMm uint16) uint32 {
	if refPx == 0 || refMm == 0 {
		return uint32(math.Round(float64(px) * 25.4 / 96))
	}
	return uint32(math.Round(float64(px) * float64(refMm) / float64(refPx)))
}
