package pixelcolor

import "image/color"

// BinaryColor is a single-bit color for monochrome content.
type BinaryColor bool

const (
	Off BinaryColor = false
	On  BinaryColor = true
)

// RGBA implements color.Color. On is white, Off is black.
func (c BinaryColor) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (c BinaryColor) String() string {
	if c {
		return "On"
	}
	return "Off"
}

func toBinary(c color.Color) color.Color {
	if v, ok := c.(BinaryColor); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return BinaryColor(y >= 0x8000)
}

// BinaryModel converts colors to BinaryColor by thresholding luma at half
// intensity.
var BinaryModel = color.ModelFunc(toBinary)
