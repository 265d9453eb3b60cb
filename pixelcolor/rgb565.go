package pixelcolor

import (
	"fmt"
	"image/color"
)

// RGB565 is a 16-bit packed color: 5 bits red, 6 bits green, 5 bits blue,
// red in the most significant bits.
type RGB565 uint16

// Common RGB565 colors.
const (
	Black   RGB565 = 0x0000
	White   RGB565 = 0xFFFF
	Red     RGB565 = 0xF800
	Green   RGB565 = 0x07E0
	Blue    RGB565 = 0x001F
	Yellow  RGB565 = Red | Green
	Cyan    RGB565 = Green | Blue
	Magenta RGB565 = Red | Blue
)

// NewRGB565 packs 8-bit channels, dropping the low bits of each channel.
func NewRGB565(r, g, b uint8) RGB565 {
	return RGB565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB565FromWire decodes a color sent most significant byte first.
func RGB565FromWire(w [2]byte) RGB565 {
	return RGB565(uint16(w[0])<<8 | uint16(w[1]))
}

// R returns the raw 5-bit red channel.
func (c RGB565) R() uint8 { return uint8(c>>11) & 0x1F }

// G returns the raw 6-bit green channel.
func (c RGB565) G() uint8 { return uint8(c>>5) & 0x3F }

// B returns the raw 5-bit blue channel.
func (c RGB565) B() uint8 { return uint8(c) & 0x1F }

// Wire returns the two bytes the controller expects, most significant first.
func (c RGB565) Wire() [2]byte {
	return [2]byte{byte(c >> 8), byte(c)}
}

// RGBA implements color.Color.
//
// Channels are expanded by bit replication so that converting back with
// RGB565Model yields the same value.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := uint32(c.R()), uint32(c.G()), uint32(c.B())
	r = (r5<<3 | r5>>2) * 0x101
	g = (g6<<2 | g6>>4) * 0x101
	b = (b5<<3 | b5>>2) * 0x101
	return r, g, b, 0xFFFF
}

func (c RGB565) String() string {
	return fmt.Sprintf("RGB565(%#04x)", uint16(c))
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

// RGB565Model converts colors to RGB565.
var RGB565Model = color.ModelFunc(toRGB565)
