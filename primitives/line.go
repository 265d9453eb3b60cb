package primitives

import (
	"image"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// Line is a segment between two inclusive end points. Only the stroke of its
// style is used.
type Line struct {
	Start, End image.Point
	Style      Style
}

// NewLine returns a line from start to end.
func NewLine(start, end image.Point, style Style) Line {
	return Line{Start: start, End: end, Style: style}
}

// Translate returns the line moved by offset.
func (l Line) Translate(offset image.Point) Line {
	l.Start = l.Start.Add(offset)
	l.End = l.End.Add(offset)
	return l
}

// Pixels implements pixel.Drawable.
//
// A one pixel wide line is rasterized with Bresenham's algorithm. Wider lines
// are thickened symmetrically around the ideal segment.
func (l Line) Pixels() iter.Seq[pixel.Pixel] {
	if l.Style.Stroke == nil {
		return pixel.Empty
	}
	return func(yield func(pixel.Pixel) bool) {
		thickLine(l.Start, l.End, l.Style.width(), l.Style.Stroke, yield)
	}
}
