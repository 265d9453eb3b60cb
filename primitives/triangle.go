package primitives

import (
	"image"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// Triangle is defined by its three vertices, in any order.
type Triangle struct {
	P1, P2, P3 image.Point
	Style      Style
}

// NewTriangle returns the triangle p1, p2, p3.
func NewTriangle(p1, p2, p3 image.Point, style Style) Triangle {
	return Triangle{P1: p1, P2: p2, P3: p3, Style: style}
}

// Translate returns the triangle moved by offset.
func (t Triangle) Translate(offset image.Point) Triangle {
	t.P1 = t.P1.Add(offset)
	t.P2 = t.P2.Add(offset)
	t.P3 = t.P3.Add(offset)
	return t
}

// Pixels implements pixel.Drawable.
//
// The fill is scan-converted between the minimum and maximum row of the
// vertices. The stroke draws the three edges with the line algorithm, after
// the fill.
func (t Triangle) Pixels() iter.Seq[pixel.Pixel] {
	s := t.Style
	if s.Stroke == nil && s.Fill == nil {
		return pixel.Empty
	}
	return func(yield func(pixel.Pixel) bool) {
		vs := [3]image.Point{t.P1, t.P2, t.P3}
		if s.Fill != nil && !fillConvex(vs[:], s.Fill, yield) {
			return
		}
		if s.Stroke == nil {
			return
		}
		w := s.width()
		for i, a := range vs {
			if !thickLine(a, vs[(i+1)%3], w, s.Stroke, yield) {
				return
			}
		}
	}
}
