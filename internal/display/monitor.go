package display

import (
	"errors"

	"github.com/bnema/stretchres/internal/logger"
)

// maxListed bounds enumeration for backends that never report a gap
const maxListed = 16

// Display pairs a descriptor with the mode it was running when listed
type Display struct {
	Descriptor
	Mode    Mode
	HasMode bool
}

// List enumerates displays from ordinal 0 until the first missing one
func List(b Backend) ([]Display, error) {
	var displays []Display
	for i := 0; i < maxListed; i++ {
		desc, err := b.Device(i)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		d := Display{Descriptor: *desc}
		if mode, err := b.CurrentMode(desc.Name); err == nil {
			d.Mode = mode
			d.HasMode = true
		} else {
			logger.Debugf("No current mode for %s: %v", desc.Name, err)
		}
		displays = append(displays, d)
	}
	return displays, nil
}

// VirtualBounds returns the size of the box covering every display that
// has a known position and resolution
func VirtualBounds(displays []Display) (width, height int32) {
	first := true
	var minX, minY, maxX, maxY int32
	for _, d := range displays {
		if !d.HasMode || !d.Mode.Fields.Has(FieldPosition) {
			continue
		}
		x1, y1 := d.Mode.PositionX, d.Mode.PositionY
		x2, y2 := x1+int32(d.Mode.Width), y1+int32(d.Mode.Height)
		if first {
			minX, minY, maxX, maxY = x1, y1, x2, y2
			first = false
			continue
		}
		minX, minY = min(minX, x1), min(minY, y1)
		maxX, maxY = max(maxX, x2), max(maxY, y2)
	}
	return maxX - minX, maxY - minY
}
