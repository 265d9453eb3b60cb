package primitives

import (
	"image"
	"image/color"
	"math"

	"github.com/flavioheleno/spidisplay/pixel"
)

// The raster helpers below push pixels into yield and report false as soon
// as the consumer stops, so callers can bail out of nested loops.

func bresenham(a, b image.Point, c color.Color, yield func(pixel.Pixel) bool) bool {
	dx, sx := abs(b.X-a.X), sign(b.X-a.X)
	dy, sy := -abs(b.Y-a.Y), sign(b.Y-a.Y)
	e := dx + dy
	p := a
	for {
		if !yield(pixel.Pixel{Point: p, Color: c}) {
			return false
		}
		if p == b {
			return true
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

// thickLine fills the band covering the segment a-b offset along its normal
// from -(w/2) to +(w-1)/2. Even widths put the extra row on the side of the
// lower coordinate.
func thickLine(a, b image.Point, w int, c color.Color, yield func(pixel.Pixel) bool) bool {
	if w <= 1 {
		return bresenham(a, b, c, yield)
	}
	lo, hi := w/2, (w-1)/2
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return fillRect(image.Rect(a.X-lo, a.Y-lo, a.X+hi+1, a.Y+hi+1), c, yield)
	}
	nx, ny := -dy/l, dx/l
	if ny < 0 || (ny == 0 && nx < 0) {
		nx, ny = -nx, -ny
	}
	offset := func(p image.Point, k float64) image.Point {
		return image.Pt(
			int(math.Round(float64(p.X)+nx*k)),
			int(math.Round(float64(p.Y)+ny*k)),
		)
	}
	quad := [4]image.Point{
		offset(a, -float64(lo)),
		offset(b, -float64(lo)),
		offset(b, float64(hi)),
		offset(a, float64(hi)),
	}
	return fillConvex(quad[:], c, yield)
}

// fillConvex scan-converts a convex polygon row by row, filling between the
// leftmost and rightmost edge intersection of each row, both inclusive.
func fillConvex(vs []image.Point, c color.Color, yield func(pixel.Pixel) bool) bool {
	minY, maxY := vs[0].Y, vs[0].Y
	for _, v := range vs[1:] {
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	for y := minY; y <= maxY; y++ {
		x0, x1 := math.MaxInt, math.MinInt
		for i, a := range vs {
			b := vs[(i+1)%len(vs)]
			if (y < a.Y && y < b.Y) || (y > a.Y && y > b.Y) {
				continue
			}
			if a.Y == b.Y {
				x0 = min(x0, a.X, b.X)
				x1 = max(x1, a.X, b.X)
				continue
			}
			x := a.X + roundDiv((y-a.Y)*(b.X-a.X), b.Y-a.Y)
			x0 = min(x0, x)
			x1 = max(x1, x)
		}
		for x := x0; x <= x1; x++ {
			if !yield(pixel.Pixel{Point: image.Pt(x, y), Color: c}) {
				return false
			}
		}
	}
	return true
}

// fillRect emits r (half-open) row-major.
func fillRect(r image.Rectangle, c color.Color, yield func(pixel.Pixel) bool) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !yield(pixel.Pixel{Point: image.Pt(x, y), Color: c}) {
				return false
			}
		}
	}
	return true
}

// roundDiv divides rounding half away from zero.
func roundDiv(n, d int) int {
	if d < 0 {
		n, d = -n, -d
	}
	if n >= 0 {
		return (2*n + d) / (2 * d)
	}
	return -((-2*n + d) / (2 * d))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
