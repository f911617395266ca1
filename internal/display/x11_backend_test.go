package display

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/stretchr/testify/assert"
)

// modeInfo builds a mode whose refresh rate works out to hz
func modeInfo(id uint32, width, height uint16, hz uint32) randr.ModeInfo {
	const htotal, vtotal = 2200, 1125
	return randr.ModeInfo{
		Id:       id,
		Width:    width,
		Height:   height,
		Htotal:   htotal,
		Vtotal:   vtotal,
		DotClock: hz * htotal * vtotal,
	}
}

func TestRefreshRate(t *testing.T) {
	assert.Equal(t, uint32(60), refreshRate(modeInfo(1, 1920, 1080, 60)))
	assert.Equal(t, uint32(144), refreshRate(modeInfo(1, 1920, 1080, 144)))
	assert.Zero(t, refreshRate(randr.ModeInfo{DotClock: 148500000}))

	// 59.94 Hz rounds to 60
	m := randr.ModeInfo{Htotal: 2200, Vtotal: 1125, DotClock: 148351648}
	assert.Equal(t, uint32(60), refreshRate(m))
}

func TestPickMode(t *testing.T) {
	all := []randr.ModeInfo{
		modeInfo(10, 2560, 1440, 144),
		modeInfo(11, 2560, 1440, 60),
		modeInfo(12, 1920, 1080, 60),
		modeInfo(13, 1280, 720, 60),
	}
	outputModes := []randr.Mode{10, 11, 12}

	tests := []struct {
		name          string
		width, height uint32
		frequency     uint32
		want          randr.Mode
		found         bool
	}{
		{"first matching size without frequency", 2560, 1440, 0, 10, true},
		{"closest refresh wins", 2560, 1440, 59, 11, true},
		{"single candidate", 1920, 1080, 0, 12, true},
		{"mode not offered by output", 1280, 720, 0, 0, false},
		{"unknown size", 3840, 2160, 60, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickMode(all, outputModes, tt.width, tt.height, tt.frequency)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRotationMapping(t *testing.T) {
	for _, o := range []Orientation{OrientationDefault, Orientation90, Orientation180, Orientation270} {
		assert.Equal(t, o, rotationToOrientation(orientationToRotation(o)), o.String())
	}
	// reflection bits do not change the orientation
	assert.Equal(t, Orientation180, rotationToOrientation(randr.RotationRotate180|randr.RotationReflectX))
}

func TestCrtcExtent(t *testing.T) {
	assert.Equal(t, extent{x: 0, y: 0, w: 2560, h: 1440}, crtcExtent(0, 0, 2560, 1440, randr.RotationRotate0))
	assert.Equal(t, extent{x: 1920, y: 0, w: 1080, h: 1920}, crtcExtent(1920, 0, 1920, 1080, randr.RotationRotate90))
	assert.Equal(t, extent{x: 0, y: 0, w: 1920, h: 1080}, crtcExtent(0, 0, 1920, 1080, randr.RotationRotate180))
}

func TestScreenExtent(t *testing.T) {
	w, h := screenExtent([]extent{
		{x: 0, y: 0, w: 2560, h: 1440},
		{x: 2560, y: 200, w: 1080, h: 1920},
	})
	assert.Equal(t, uint32(3640), w)
	assert.Equal(t, uint32(2120), h)

	w, h = screenExtent(nil)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestPlanScreen(t *testing.T) {
	limits := screenLimits{minW: 320, minH: 200, maxW: 8192, maxH: 8192}

	tests := []struct {
		name          string
		curW, curH    uint32
		needW, needH  uint32
		wantOK        bool
		grows         bool
		shrinks       bool
		growW, growH  uint32
		finalW, finalH uint32
	}{
		{"single monitor grows", 1920, 1080, 2560, 1440, true, true, false, 2560, 1440, 2560, 1440},
		{"single monitor shrinks", 2560, 1440, 1280, 720, true, false, true, 2560, 1440, 1280, 720},
		{"same size", 1920, 1080, 1920, 1080, true, false, false, 1920, 1080, 1920, 1080},
		{"wider but shorter", 1920, 1200, 2560, 1080, true, true, true, 2560, 1200, 2560, 1080},
		{"clamped to minimum", 640, 480, 100, 100, true, false, true, 640, 480, 320, 200},
		{"beyond maximum", 1920, 1080, 10240, 4320, false, false, false, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := planScreen(tt.curW, tt.curH, tt.needW, tt.needH, limits)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.grows, plan.grows())
			assert.Equal(t, tt.shrinks, plan.shrinks())
			assert.Equal(t, tt.growW, plan.growW)
			assert.Equal(t, tt.growH, plan.growH)
			assert.Equal(t, tt.finalW, plan.finalW)
			assert.Equal(t, tt.finalH, plan.finalH)
		})
	}
}

func TestMillimeters(t *testing.T) {
	// keeps the initial DPI
	assert.Equal(t, uint32(677), millimeters(2560, 1920, 508))
	// 96 DPI fallback
	assert.Equal(t, uint32(508), millimeters(1920, 0, 0))
}
