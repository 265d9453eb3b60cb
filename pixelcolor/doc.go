// Package pixelcolor provides the packed pixel formats used by the display
// controllers: 16-bit RGB565 for colour panels, 4-bit grayscale for the
// SSD1322 and a single-bit BinaryColor for monochrome content.
//
// Every type implements color.Color and comes with a color.Model, so any Go
// color can be converted to the native format of a controller:
//
//	c := pixelcolor.RGB565Model.Convert(color.RGBA{R: 0xFF, A: 0xFF}).(pixelcolor.RGB565)
//	w := c.Wire() // [0xF8, 0x00], most significant byte first
//
// Conversions are pure and total; they never fail.
package pixelcolor
