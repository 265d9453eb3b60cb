// Package pixel defines the contract shared by everything that renders to a
// display: a drawable produces a lazy, ordered sequence of colored pixels and
// a draw target consumes it.
//
// Sequences are iter.Seq values. They are produced on demand and never
// materialized, so drawing a full-screen shape needs no intermediate storage.
// Ranging over a sequence a second time renders it again from the immutable
// value that produced it.
package pixel

import (
	"image"
	"image/color"
	"iter"
)

// Pixel is a single colored point in panel coordinates.
type Pixel struct {
	Point image.Point
	Color color.Color
}

// Drawable is implemented by primitives and text runs.
type Drawable interface {
	Pixels() iter.Seq[Pixel]
}

// Seq adapts a bare sequence to Drawable.
type Seq iter.Seq[Pixel]

// Pixels implements Drawable.
func (s Seq) Pixels() iter.Seq[Pixel] {
	return iter.Seq[Pixel](s)
}

// Translate offsets every point of seq by offset.
func Translate(seq iter.Seq[Pixel], offset image.Point) iter.Seq[Pixel] {
	if offset == (image.Point{}) {
		return seq
	}
	return func(yield func(Pixel) bool) {
		for p := range seq {
			p.Point = p.Point.Add(offset)
			if !yield(p) {
				return
			}
		}
	}
}

// Filter keeps the pixels for which keep returns true.
func Filter(seq iter.Seq[Pixel], keep func(Pixel) bool) iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for p := range seq {
			if keep(p) && !yield(p) {
				return
			}
		}
	}
}

// Concat yields the pixels of every sequence in order.
func Concat(seqs ...iter.Seq[Pixel]) iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for _, seq := range seqs {
			for p := range seq {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Empty is the sequence with no pixels.
func Empty(func(Pixel) bool) {}
