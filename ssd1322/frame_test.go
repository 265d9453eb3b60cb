package ssd1322

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/flavioheleno/spidisplay/pixelcolor"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantPanic  bool
		wantStride int
		wantPixLen int
	}{
		{"256x64", image.Rect(0, 0, 256, 64), false, 128, 8192},
		{"128x64", image.Rect(0, 0, 128, 64), false, 64, 4096},
		{"4x2", image.Rect(0, 0, 4, 2), false, 2, 4},
		{"odd width panics", image.Rect(0, 0, 5, 2), true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("panic = %v, want panic = %v", r != nil, tt.wantPanic)
				}
			}()
			f := newFrame(tt.rect)
			if f.stride != tt.wantStride {
				t.Errorf("stride = %d, want %d", f.stride, tt.wantStride)
			}
			if len(f.pix) != tt.wantPixLen {
				t.Errorf("len(pix) = %d, want %d", len(f.pix), tt.wantPixLen)
			}
		})
	}
}

func TestFrameNibblePacking(t *testing.T) {
	f := newFrame(image.Rect(0, 0, 4, 1))
	for x, y := range []uint8{5, 10, 3, 12} {
		f.setGray4(x, 0, pixelcolor.Gray4{Y: y})
	}
	if f.pix[0] != 0x5A || f.pix[1] != 0x3C {
		t.Errorf("pix = % X, want 5A 3C", f.pix)
	}
	for x, want := range []uint8{5, 10, 3, 12} {
		if got := f.gray4At(x, 0); got.Y != want {
			t.Errorf("gray4At(%d, 0) = %d, want %d", x, got.Y, want)
		}
	}

	// Overwriting one nibble keeps the other.
	f.setGray4(1, 0, pixelcolor.Gray4{Y: 0})
	if f.pix[0] != 0x50 {
		t.Errorf("pix[0] = %#02x, want 0x50", f.pix[0])
	}
}

func TestFrameSetConverts(t *testing.T) {
	f := newFrame(image.Rect(0, 0, 4, 2))
	f.Set(0, 1, color.White)
	f.Set(1, 1, pixelcolor.On)
	f.Set(2, 1, color.RGBA{0x88, 0x88, 0x88, 0xFF})
	if f.pix[2] != 0xFF || f.pix[3] != 0x80 {
		t.Errorf("pix = % X", f.pix)
	}
	if got := f.At(2, 1); got != (pixelcolor.Gray4{Y: 8}) {
		t.Errorf("At(2, 1) = %v", got)
	}
}

func TestFrameOutOfBounds(t *testing.T) {
	f := newFrame(image.Rect(0, 0, 4, 2))
	f.Set(4, 0, color.White)
	f.Set(-1, 0, color.White)
	f.Set(0, 2, color.White)
	for i, b := range f.pix {
		if b != 0 {
			t.Errorf("pix[%d] = %#02x, want 0", i, b)
		}
	}
	if got := f.gray4At(10, 10); got.Y != 0 {
		t.Errorf("gray4At out of bounds = %d", got.Y)
	}
}

func TestFrameRow(t *testing.T) {
	f := &frame{
		pix:    []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77},
		stride: 4,
		rect:   image.Rect(0, 0, 8, 2),
	}
	got := f.row(1, 2, 6)
	if len(got) != 2 || got[0] != 0x55 || got[1] != 0x66 {
		t.Errorf("row(1, 2, 6) = % X, want 55 66", got)
	}
}

func TestFrameIsDrawImage(t *testing.T) {
	var _ draw.Image = (*frame)(nil)

	f := newFrame(image.Rect(0, 0, 8, 2))
	draw.Draw(f, f.Bounds(), image.NewUniform(pixelcolor.Gray4{Y: 0x3}), image.Point{}, draw.Src)
	for i, b := range f.pix {
		if b != 0x33 {
			t.Errorf("pix[%d] = %#02x, want 0x33", i, b)
		}
	}
}
