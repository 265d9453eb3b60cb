package fonts

import (
	"image"
	"image/color"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// TextStyle is the style of a text run. A nil Background leaves the pixels
// around the glyphs untouched.
type TextStyle struct {
	Color      color.Color
	Background color.Color
	// StrokeWidth grows every glyph pixel into a StrokeWidth×StrokeWidth
	// block, clipped to its cell. Values below 1 are treated as 1.
	StrokeWidth int
}

// Text is a single line of text. Origin is the top-left corner of the first
// cell.
type Text struct {
	Text   string
	Origin image.Point
	Font   *Font
	Style  TextStyle
}

// NewText returns a text run.
func NewText(text string, origin image.Point, font *Font, style TextStyle) Text {
	return Text{Text: text, Origin: origin, Font: font, Style: style}
}

// Render is a shorthand for NewText(text, origin, font, style).Pixels().
func Render(text string, origin image.Point, font *Font, style TextStyle) iter.Seq[pixel.Pixel] {
	return NewText(text, origin, font, style).Pixels()
}

// Translate returns the run moved by offset.
func (t Text) Translate(offset image.Point) Text {
	t.Origin = t.Origin.Add(offset)
	return t
}

// Bounds returns the rectangle covered by the run's cells.
func (t Text) Bounds() image.Rectangle {
	return image.Rectangle{Min: t.Origin, Max: t.Origin.Add(t.Font.MeasureString(t.Text))}
}

// Pixels implements pixel.Drawable. Characters are produced left to right,
// each cell row-major.
func (t Text) Pixels() iter.Seq[pixel.Pixel] {
	s := t.Style
	if t.Font == nil || (s.Color == nil && s.Background == nil) {
		return pixel.Empty
	}
	w := max(s.StrokeWidth, 1)
	f := t.Font
	return func(yield func(pixel.Pixel) bool) {
		pen := t.Origin
		for _, r := range t.Text {
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					c := s.Background
					if f.covered(r, x, y, w) {
						c = s.Color
					}
					if c == nil {
						continue
					}
					if !yield(pixel.Pixel{Point: pen.Add(image.Pt(x, y)), Color: c}) {
						return
					}
				}
			}
			pen.X += f.Width
		}
	}
}
