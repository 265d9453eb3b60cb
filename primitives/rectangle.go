package primitives

import (
	"image"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// Rectangle is an axis-aligned box between two inclusive corners.
type Rectangle struct {
	TopLeft, BottomRight image.Point
	Style                Style
}

// NewRectangle returns the rectangle spanning both corners. The corners may
// be given in any order.
func NewRectangle(topLeft, bottomRight image.Point, style Style) Rectangle {
	return Rectangle{TopLeft: topLeft, BottomRight: bottomRight, Style: style}
}

// Translate returns the rectangle moved by offset.
func (r Rectangle) Translate(offset image.Point) Rectangle {
	r.TopLeft = r.TopLeft.Add(offset)
	r.BottomRight = r.BottomRight.Add(offset)
	return r
}

// Bounds returns the half-open rectangle covered by r.
func (r Rectangle) Bounds() image.Rectangle {
	b := image.Rectangle{Min: r.TopLeft, Max: r.BottomRight}.Canon()
	b.Max = b.Max.Add(image.Pt(1, 1))
	return b
}

// Pixels implements pixel.Drawable.
//
// The stroke is a band of StrokeWidth pixels inside the rectangle. The fill
// covers what is left inside the band and is produced first.
func (r Rectangle) Pixels() iter.Seq[pixel.Pixel] {
	s := r.Style
	if s.Stroke == nil && s.Fill == nil {
		return pixel.Empty
	}
	b := r.Bounds()
	bw := 0
	if s.Stroke != nil {
		bw = s.width()
	}
	return func(yield func(pixel.Pixel) bool) {
		if s.Fill != nil {
			if !fillRect(b.Inset(bw), s.Fill, yield) {
				return
			}
		}
		if s.Stroke == nil {
			return
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if y < b.Min.Y+bw || y >= b.Max.Y-bw || b.Min.X+bw >= b.Max.X-bw {
				if !fillRect(image.Rect(b.Min.X, y, b.Max.X, y+1), s.Stroke, yield) {
					return
				}
				continue
			}
			if !fillRect(image.Rect(b.Min.X, y, b.Min.X+bw, y+1), s.Stroke, yield) {
				return
			}
			if !fillRect(image.Rect(b.Max.X-bw, y, b.Max.X, y+1), s.Stroke, yield) {
				return
			}
		}
	}
}
