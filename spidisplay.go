package spidisplay

import (
	"fmt"
	"image"
	"image/color"
	"iter"

	"github.com/flavioheleno/spidisplay/pixel"
)

// State is the lifecycle state of a display controller.
type State int

const (
	Uninitialized State = iota
	Resetting
	Initializing
	Ready
	Sleeping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Resetting:
		return "Resetting"
	case Initializing:
		return "Initializing"
	case Ready:
		return "Ready"
	case Sleeping:
		return "Sleeping"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Controller is implemented by the display drivers.
//
// Pixels passed to WritePixels must lie within Bounds. Only a Ready
// controller accepts pixels. Direct-address controllers put every pixel on
// the wire before WritePixels returns and implement Flush as a no-op;
// frame-buffered controllers keep pixels in memory until Flush.
type Controller interface {
	Bounds() image.Rectangle
	State() State
	Reset() error
	Init() error
	WritePixels(seq iter.Seq[pixel.Pixel]) error
	Flush() error
}

// Target clips pixel sequences to a controller's bounds and forwards them.
type Target struct {
	c Controller
}

// NewTarget returns a Target drawing on c.
func NewTarget(c Controller) *Target {
	return &Target{c: c}
}

// Bounds returns the drawable area.
func (t *Target) Bounds() image.Rectangle {
	return t.c.Bounds()
}

// Controller returns the controller behind t.
func (t *Target) Controller() Controller {
	return t.c
}

// DrawPixels consumes seq fully. Pixels outside Bounds are dropped.
func (t *Target) DrawPixels(seq iter.Seq[pixel.Pixel]) error {
	b := t.c.Bounds()
	inside := pixel.Filter(seq, func(p pixel.Pixel) bool {
		return p.Point.In(b)
	})
	if err := t.c.WritePixels(inside); err != nil {
		return fmt.Errorf("spidisplay: draw: %w", err)
	}
	return nil
}

// Draw draws every drawable in order.
func (t *Target) Draw(ds ...pixel.Drawable) error {
	for _, d := range ds {
		if err := t.DrawPixels(d.Pixels()); err != nil {
			return err
		}
	}
	return nil
}

// Clear paints the whole area with c.
func (t *Target) Clear(c color.Color) error {
	b := t.c.Bounds()
	return t.DrawPixels(func(yield func(pixel.Pixel) bool) {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if !yield(pixel.Pixel{Point: image.Pt(x, y), Color: c}) {
					return
				}
			}
		}
	})
}

// Flush pushes buffered pixels to the panel.
func (t *Target) Flush() error {
	if err := t.c.Flush(); err != nil {
		return fmt.Errorf("spidisplay: flush: %w", err)
	}
	return nil
}
