// Package primitives provides the vector shapes that can be drawn on a
// display: lines, rectangles, triangles and circles.
//
// Shapes are small immutable values. Pixels returns a lazy sequence of
// colored pixels; nothing is allocated per pixel. When a shape has both a
// fill and a stroke, every fill pixel is produced before any stroke pixel, so
// the border always ends up in the stroke color whatever the sink does with
// duplicates.
package primitives

import "image/color"

// Style describes how a shape is painted. A nil color disables that part; a
// shape with neither stroke nor fill produces no pixels.
type Style struct {
	Stroke      color.Color
	Fill        color.Color
	StrokeWidth int // values below 1 are treated as 1
}

// Stroked returns an outline-only style.
func Stroked(c color.Color, width int) Style {
	return Style{Stroke: c, StrokeWidth: width}
}

// Filled returns a fill-only style.
func Filled(c color.Color) Style {
	return Style{Fill: c}
}

// WithFill returns a copy of s with the given fill color.
func (s Style) WithFill(c color.Color) Style {
	s.Fill = c
	return s
}

// WithStroke returns a copy of s with the given stroke color and width.
func (s Style) WithStroke(c color.Color, width int) Style {
	s.Stroke = c
	s.StrokeWidth = width
	return s
}

func (s Style) width() int {
	if s.StrokeWidth < 1 {
		return 1
	}
	return s.StrokeWidth
}
