package ssd1322

import (
	"image"
	"image/color"

	"github.com/flavioheleno/spidisplay/pixelcolor"
)

// frame is the local copy of the panel memory: 4-bit grayscale pixels
// packed two per byte, high nibble = left pixel, low nibble = right pixel.
// It implements draw.Image.
type frame struct {
	pix    []byte
	stride int // bytes per row
	rect   image.Rectangle
}

// newFrame allocates a frame for r. The width of r must be even.
func newFrame(r image.Rectangle) *frame {
	if r.Dx()%2 != 0 {
		panic("ssd1322: frame width must be even")
	}
	return &frame{
		pix:    make([]byte, r.Dx()*r.Dy()/2),
		stride: r.Dx() / 2,
		rect:   r,
	}
}

func (f *frame) ColorModel() color.Model {
	return pixelcolor.Gray4Model
}

func (f *frame) Bounds() image.Rectangle {
	return f.rect
}

func (f *frame) At(x, y int) color.Color {
	return f.gray4At(x, y)
}

func (f *frame) gray4At(x, y int) pixelcolor.Gray4 {
	if !(image.Point{X: x, Y: y}.In(f.rect)) {
		return pixelcolor.Gray4{}
	}
	offset, shift := f.pixOffset(x, y)
	return pixelcolor.Gray4{Y: (f.pix[offset] >> shift) & 0x0F}
}

func (f *frame) Set(x, y int, c color.Color) {
	f.setGray4(x, y, pixelcolor.Gray4Model.Convert(c).(pixelcolor.Gray4))
}

func (f *frame) setGray4(x, y int, c pixelcolor.Gray4) {
	if !(image.Point{X: x, Y: y}.In(f.rect)) {
		return
	}
	offset, shift := f.pixOffset(x, y)
	f.pix[offset] = (f.pix[offset] &^ (0x0F << shift)) | ((c.Y & 0x0F) << shift)
}

// row returns the bytes of row y between columns x0 and x1. Both must be
// even.
func (f *frame) row(y, x0, x1 int) []byte {
	start := (y-f.rect.Min.Y)*f.stride + (x0-f.rect.Min.X)/2
	return f.pix[start : start+(x1-x0)/2]
}

// pixOffset returns the byte offset and bit shift of pixel x, y. Even x
// lives in the high nibble.
func (f *frame) pixOffset(x, y int) (offset int, shift uint) {
	offset = (y-f.rect.Min.Y)*f.stride + (x-f.rect.Min.X)/2
	shift = uint(4 * (1 - (x & 1)))
	return
}
