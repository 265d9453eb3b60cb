package pixelcolor

import "image/color"

// Gray4 is a 4-bit grayscale color (16 intensity levels). Only the lower 4
// bits of Y are used.
type Gray4 struct {
	Y uint8
}

// Gray4On is the fully lit level of a grayscale OLED.
var Gray4On = Gray4{Y: 0x0F}

// RGBA implements color.Color.
func (c Gray4) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

func toGray4(c color.Color) color.Color {
	switch v := c.(type) {
	case Gray4:
		return Gray4{Y: v.Y & 0x0F}
	case BinaryColor:
		if v {
			return Gray4On
		}
		return Gray4{}
	}
	r, g, b, _ := c.RGBA()
	// ITU-R 601 luma on 16-bit channels, then keep the top nibble.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Gray4{Y: uint8(y >> 12)}
}

// Gray4Model converts colors to Gray4.
var Gray4Model = color.ModelFunc(toGray4)
