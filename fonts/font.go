// Package fonts renders monospace bitmap text as pixel sequences.
//
// Three cell sizes are provided: Font6x8, Font8x16 and Font12x16. Each
// character occupies exactly one cell and advances the pen by the cell
// width. Characters outside printable ASCII are drawn as a solid block over
// the glyph area of the cell.
package fonts

import (
	"image"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstRune = ' '
	lastRune  = '~'
)

// Font describes a monospace bitmap font.
type Font struct {
	Name          string
	Width, Height int // cell size in pixels

	// glyph is the part of the cell that holds glyph pixels, in cell
	// coordinates.
	glyph image.Rectangle
	// on reports whether glyph pixel x, y of r is set. x and y are relative
	// to glyph.Min and r is always printable.
	on func(r rune, x, y int) bool
}

// Font8x16 places the 6×13 fixed glyphs in an 8×16 cell with a one pixel
// margin.
var Font8x16 = &Font{
	Name:   "8x16",
	Width:  8,
	Height: 16,
	glyph:  image.Rect(1, 1, 7, 14),
	on: func(r rune, x, y int) bool {
		return face7x13(r, x, y)
	},
}

// Font12x16 is Font8x16's glyph set stretched to twice its width.
var Font12x16 = &Font{
	Name:   "12x16",
	Width:  12,
	Height: 16,
	glyph:  image.Rect(0, 1, 12, 14),
	on: func(r rune, x, y int) bool {
		return face7x13(r, x/2, y)
	},
}

func face7x13(r rune, x, y int) bool {
	f := basicfont.Face7x13
	_, mask, mp, _, ok := f.Glyph(fixed.P(0, f.Ascent), r)
	if !ok {
		return false
	}
	_, _, _, a := mask.At(mp.X+x, mp.Y+y).RGBA()
	return a >= 0x8000
}

// Contains reports whether r has a glyph in f. Other runes render as a
// block.
func (f *Font) Contains(r rune) bool {
	return r >= firstRune && r <= lastRune
}

// MeasureString returns the size of the cells s occupies when rendered on
// a single line.
func (f *Font) MeasureString(s string) image.Point {
	n := 0
	for range s {
		n++
	}
	if n == 0 {
		return image.Point{}
	}
	return image.Pt(n*f.Width, f.Height)
}

// ink reports whether cell pixel x, y belongs to the unthickened glyph of r.
func (f *Font) ink(r rune, x, y int) bool {
	p := image.Pt(x, y)
	if !p.In(f.glyph) {
		return false
	}
	if !f.Contains(r) {
		return true
	}
	p = p.Sub(f.glyph.Min)
	return f.on(r, p.X, p.Y)
}

// covered reports whether cell pixel x, y is set once every glyph pixel is
// grown into a w×w block anchored at its top-left corner.
func (f *Font) covered(r rune, x, y, w int) bool {
	for gy := y - w + 1; gy <= y; gy++ {
		for gx := x - w + 1; gx <= x; gx++ {
			if f.ink(r, gx, gy) {
				return true
			}
		}
	}
	return false
}

func (f *Font) String() string {
	return f.Name
}
