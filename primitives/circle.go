package primitives

import (
	"image"
	"image/color"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// Circle is given by its center and radius in pixels. A negative radius
// draws nothing.
type Circle struct {
	Center image.Point
	Radius int
	Style  Style
}

// NewCircle returns a circle around center.
func NewCircle(center image.Point, radius int, style Style) Circle {
	return Circle{Center: center, Radius: radius, Style: style}
}

// Translate returns the circle moved by offset.
func (c Circle) Translate(offset image.Point) Circle {
	c.Center = c.Center.Add(offset)
	return c
}

// Pixels implements pixel.Drawable.
//
// The fill is every pixel with dx²+dy² ≤ r². A one pixel stroke follows the
// midpoint circle algorithm; a wider stroke is the ring of pixels whose
// rounded distance to the center lies within the last StrokeWidth radii.
func (c Circle) Pixels() iter.Seq[pixel.Pixel] {
	s := c.Style
	if c.Radius < 0 || (s.Stroke == nil && s.Fill == nil) {
		return pixel.Empty
	}
	r := c.Radius
	return func(yield func(pixel.Pixel) bool) {
		if s.Fill != nil {
			if !c.disc(r*r, -1, s.Fill, yield) {
				return
			}
		}
		if s.Stroke == nil {
			return
		}
		w := s.width()
		if w == 1 {
			c.midpoint(yield)
			return
		}
		// round(d) in [r-w+1, r]  <=>  (r-w)²+(r-w) < d² <= r²+r
		inner := -1
		if k := r - w; k >= 0 {
			inner = k*k + k
		}
		c.disc(r*r+r, inner, s.Stroke, yield)
	}
}

// disc emits, row-major, the pixels with inner < dx²+dy² <= outer.
func (c Circle) disc(outer, inner int, col color.Color, yield func(pixel.Pixel) bool) bool {
	r := c.Radius + 1
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d > outer || d <= inner {
				continue
			}
			if !yield(pixel.Pixel{Point: c.Center.Add(image.Pt(dx, dy)), Color: col}) {
				return false
			}
		}
	}
	return true
}

func (c Circle) midpoint(yield func(pixel.Pixel) bool) bool {
	x, y, d := 0, c.Radius, 1-c.Radius
	for x <= y {
		pts := [8]image.Point{
			{x, y}, {-x, y}, {x, -y}, {-x, -y},
			{y, x}, {-y, x}, {y, -x}, {-y, -x},
		}
	next:
		for i, p := range pts {
			for _, q := range pts[:i] {
				if p == q {
					continue next
				}
			}
			if !yield(pixel.Pixel{Point: c.Center.Add(p), Color: c.Style.Stroke}) {
				return false
			}
		}
		x++
		if d < 0 {
			d += 2*x + 1
		} else {
			y--
			d += 2*(x-y) + 1
		}
	}
	return true
}
