package ssd1322

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/flavioheleno/spidisplay"
	"github.com/flavioheleno/spidisplay/internal/wiretest"
	"github.com/flavioheleno/spidisplay/pixel"
	"github.com/flavioheleno/spidisplay/pixelcolor"
)

func noDelay(time.Duration) {}

func newDev(t *testing.T, opts *Opts) (*Dev, *wiretest.Recorder) {
	t.Helper()
	rec := wiretest.NewRecorder()
	if opts == nil {
		opts = &Opts{}
	}
	opts.Delay = noDelay
	dev, err := New(rec, rec.DC, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rec.Clear()
	return dev, rec
}

func pixels(ps ...pixel.Pixel) pixel.Seq {
	return func(yield func(pixel.Pixel) bool) {
		for _, p := range ps {
			if !yield(p) {
				return
			}
		}
	}
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 256x64", &Opts{W: 256, H: 64}, false},
		{"valid 128x64", &Opts{W: 128, H: 64}, false},
		{"valid 4x1 (minimum)", &Opts{W: 4, H: 1}, false},
		{"valid 480x128 (maximum)", &Opts{W: 480, H: 128}, false},
		{"width not a multiple of 4", &Opts{W: 254, H: 64}, true},
		{"odd width", &Opts{W: 255, H: 64}, true},
		{"width zero", &Opts{W: 0, H: 64}, true},
		{"width > 480", &Opts{W: 512, H: 64}, true},
		{"height zero", &Opts{W: 256, H: 0}, true},
		{"height > 128", &Opts{W: 256, H: 200}, true},
		{"rotated (valid)", &Opts{W: 256, H: 64, Rotated: true}, false},
		{"sequential (valid)", &Opts{W: 256, H: 64, Sequential: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wiretest.NewRecorder()
			opts := tt.opts
			if opts != nil {
				opts.Delay = noDelay
			}
			_, err := New(rec, rec.DC, opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && len(rec.Frames) != 0 {
				t.Errorf("invalid options sent %d frames", len(rec.Frames))
			}
		})
	}
}

func TestDevBounds(t *testing.T) {
	dev, _ := newDev(t, &Opts{W: 256, H: 64})
	want := image.Rect(0, 0, 256, 64)
	if got := dev.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestDevColorModel(t *testing.T) {
	dev, _ := newDev(t, nil)
	if dev.ColorModel() != pixelcolor.Gray4Model {
		t.Error("ColorModel() did not return Gray4Model")
	}
}

func TestDevString(t *testing.T) {
	dev, _ := newDev(t, &Opts{W: 128, H: 64})
	want := "ssd1322.Dev{128x64}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInitSequence(t *testing.T) {
	rec := wiretest.NewRecorder()
	dev, err := New(rec, rec.DC, &Opts{Delay: noDelay})
	if err != nil {
		t.Fatal(err)
	}
	if got := dev.State(); got != spidisplay.Ready {
		t.Errorf("State() = %v, want Ready", got)
	}

	wantCmds := []byte{
		0xFD, 0xAE, 0xB3, 0xCA, 0xA2, 0xA1, 0xA0, 0xAB, 0xB4, 0xC1, 0xC7,
		0xB9, 0xB1, 0xD1, 0xBB, 0xB6, 0xBE, 0xA6, 0xA9,
		0x15, 0x75, 0x5C, 0xAF,
	}
	if got := rec.Commands(); !bytes.Equal(got, wantCmds) {
		t.Errorf("commands = % X, want % X", got, wantCmds)
	}

	params := []struct {
		cmd  byte
		want []byte
	}{
		{0xFD, []byte{0x12}},
		{0xCA, []byte{63}},
		{0xA0, []byte{0x14, 0x11}},
		{0xD1, []byte{0x82, 0x20}},
		{0x15, []byte{28, 91}},
		{0x75, []byte{0, 63}},
		{0xAE, []byte{}},
	}
	for _, p := range params {
		if got := rec.After(p.cmd); !bytes.Equal(got, p.want) {
			t.Errorf("params of %#02x = % X, want % X", p.cmd, got, p.want)
		}
	}

	ram := rec.After(0x5C)
	if len(ram) != 256*64/2 || !bytes.Equal(ram, make([]byte, 256*64/2)) {
		t.Errorf("display RAM not cleared (%d bytes)", len(ram))
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		name string
		opts Opts
		want []byte
	}{
		{"default", Opts{}, []byte{0x14, 0x11}},
		{"rotated", Opts{Rotated: true}, []byte{0x06, 0x11}},
		{"swap top bottom", Opts{SwapTopBottom: true}, []byte{0x14, 0x13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wiretest.NewRecorder()
			opts := tt.opts
			opts.Delay = noDelay
			if _, err := New(rec, rec.DC, &opts); err != nil {
				t.Fatal(err)
			}
			if got := rec.After(0xA0); !bytes.Equal(got, tt.want) {
				t.Errorf("remap = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestDevColumnOffset(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		wantOffset int
		wantCols   []byte
	}{
		{"256 width", 256, 112, []byte{28, 91}}, // (480 - 256) / 2 = 112
		{"128 width", 128, 176, []byte{44, 75}}, // (480 - 128) / 2 = 176
		{"480 width (full)", 480, 0, []byte{0, 119}},
		{"64 width", 64, 208, []byte{52, 67}},   // (480 - 64) / 2 = 208
		{"252 width", 252, 112, []byte{28, 90}}, // 114 rounded down to a column group
		{"4 width", 4, 236, []byte{59, 59}},
		{"476 width", 476, 0, []byte{0, 118}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wiretest.NewRecorder()
			dev, err := New(rec, rec.DC, &Opts{W: tt.width, H: 64, Delay: noDelay})
			if err != nil {
				t.Fatal(err)
			}
			if dev.columnOffset != tt.wantOffset {
				t.Errorf("Column offset for width %d = %d, want %d", tt.width, dev.columnOffset, tt.wantOffset)
			}
			if got := rec.After(0x15); !bytes.Equal(got, tt.wantCols) {
				t.Errorf("column window = %v, want %v", got, tt.wantCols)
			}
		})
	}
}

func TestColumnWindowMatchesWidth(t *testing.T) {
	for _, w := range []int{4, 12, 64, 252, 256, 476, 480} {
		t.Run(fmt.Sprint(w), func(t *testing.T) {
			dev, rec := newDev(t, &Opts{W: w, H: 8})
			if err := dev.Flush(); err != nil {
				t.Fatal(err)
			}
			cols := rec.After(0x15)
			if len(cols) != 2 {
				t.Fatalf("column window = %v", cols)
			}
			if got := (int(cols[1]) - int(cols[0]) + 1) * 4; got != w {
				t.Errorf("column window %d..%d covers %d pixels per row, want %d", cols[0], cols[1], got, w)
			}
			if got := len(rec.After(0x5C)); got != w*8/2 {
				t.Errorf("flushed %d bytes, want %d", got, w*8/2)
			}
		})
	}
}

func TestDrawPartialOnOffCenterWidth(t *testing.T) {
	dev, rec := newDev(t, &Opts{W: 252, H: 8})

	src := image.NewUniform(color.White)
	if err := dev.Draw(image.Rect(8, 3, 12, 4), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	// Display pixels 8..11 are RAM pixels 120..123, column group 30.
	if got := rec.After(0x15); !bytes.Equal(got, []byte{30, 30}) {
		t.Errorf("column window = %v, want [30 30]", got)
	}
	if got := rec.After(0x75); !bytes.Equal(got, []byte{3, 3}) {
		t.Errorf("row window = %v, want [3 3]", got)
	}
	if got := rec.After(0x5C); !bytes.Equal(got, []byte{0xFF, 0xFF}) {
		t.Errorf("data = % X, want FF FF", got)
	}
}

func TestWritePixelsIsBuffered(t *testing.T) {
	dev, rec := newDev(t, nil)

	err := dev.WritePixels(pixels(
		pixel.Pixel{Point: image.Pt(0, 0), Color: pixelcolor.Gray4On},
		pixel.Pixel{Point: image.Pt(3, 1), Color: color.White},
		pixel.Pixel{Point: image.Pt(256, 0), Color: color.White},
	).Pixels())
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Frames) != 0 {
		t.Fatalf("WritePixels sent %d frames before Flush", len(rec.Frames))
	}

	if err := dev.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Commands(); !bytes.Equal(got, []byte{0x15, 0x75, 0x5C}) {
		t.Errorf("commands = % X", got)
	}
	ram := rec.After(0x5C)
	if len(ram) != 256*64/2 {
		t.Fatalf("flushed %d bytes, want %d", len(ram), 256*64/2)
	}
	want := make([]byte, 256*64/2)
	want[0] = 0xF0
	want[128+1] = 0x0F
	if !bytes.Equal(ram, want) {
		t.Error("flushed frame does not match the written pixels")
	}
}

func TestDrawDifferential(t *testing.T) {
	dev, rec := newDev(t, nil)

	src := image.NewGray(image.Rect(0, 0, 1, 1))
	src.Pix[0] = 0xFF
	if err := dev.Draw(image.Rect(10, 5, 11, 6), src, image.Point{}); err != nil {
		t.Fatal(err)
	}

	// Pixel 10 is in the 4-pixel group 8..11, column address (8+112)/4.
	if got := rec.After(0x15); !bytes.Equal(got, []byte{30, 30}) {
		t.Errorf("column window = %v, want [30 30]", got)
	}
	if got := rec.After(0x75); !bytes.Equal(got, []byte{5, 5}) {
		t.Errorf("row window = %v, want [5 5]", got)
	}
	if got := rec.After(0x5C); !bytes.Equal(got, []byte{0x00, 0xF0}) {
		t.Errorf("data = % X, want 00 F0", got)
	}

	// Drawing the same image again changes nothing.
	rec.Clear()
	if err := dev.Draw(image.Rect(10, 5, 11, 6), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(rec.Frames) != 0 {
		t.Errorf("unchanged Draw sent %d frames", len(rec.Frames))
	}
}

func TestDrawRowsAreSentInOrder(t *testing.T) {
	dev, rec := newDev(t, nil)

	src := image.NewUniform(pixelcolor.Gray4{Y: 0x8})
	if err := dev.Draw(image.Rect(4, 1, 8, 4), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := rec.After(0x75); !bytes.Equal(got, []byte{1, 3}) {
		t.Errorf("row window = %v, want [1 3]", got)
	}
	if got := rec.After(0x5C); !bytes.Equal(got, bytes.Repeat([]byte{0x88, 0x88}, 3)) {
		t.Errorf("data = % X", got)
	}
}

func TestDrawFullWidthIsOneTransfer(t *testing.T) {
	dev, rec := newDev(t, &Opts{W: 128, H: 32})

	src := image.NewUniform(color.White)
	if err := dev.Draw(image.Rect(0, 2, 128, 4), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	last := rec.Frames[len(rec.Frames)-1]
	if last.Command || len(last.Data) != 128 {
		t.Errorf("last frame = %d bytes (command %v), want one 128 byte data frame", len(last.Data), last.Command)
	}
	if got := rec.After(0x15); !bytes.Equal(got, []byte{44, 75}) {
		t.Errorf("column window = %v, want [44 75]", got)
	}
}

func TestDrawSendsPendingPixels(t *testing.T) {
	dev, rec := newDev(t, nil)

	if err := dev.WritePixels(pixels(pixel.Pixel{Point: image.Pt(255, 63), Color: pixelcolor.On}).Pixels()); err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(image.Rectangle{}, image.NewUniform(color.Black), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := rec.After(0x5C); !bytes.Equal(got, []byte{0x00, 0x0F}) {
		t.Errorf("data = % X, want 00 0F", got)
	}
}

func TestCalculateDiffNoChanges(t *testing.T) {
	dev := &Dev{
		rect:  image.Rect(0, 0, 4, 2),
		frame: newFrame(image.Rect(0, 0, 4, 2)),
		shown: make([]byte, 4),
	}

	if _, ok := dev.calculateDiff(); ok {
		t.Error("calculateDiff() reported changes on identical buffers")
	}
}

func TestCalculateDiffWithChanges(t *testing.T) {
	tests := []struct {
		name string
		pix  []byte
		want image.Rectangle
	}{
		{"first group", []byte{0xAB, 0xCD, 0, 0, 0, 0, 0, 0}, image.Rect(0, 0, 4, 1)},
		{"second group", []byte{0, 0, 0x01, 0, 0, 0, 0, 0}, image.Rect(4, 0, 8, 1)},
		{"both rows", []byte{0, 0x10, 0, 0, 0, 0, 0, 0x01}, image.Rect(0, 0, 8, 2)},
		{"second row", []byte{0, 0, 0, 0, 0, 0, 0x01, 0}, image.Rect(4, 1, 8, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &Dev{
				rect:  image.Rect(0, 0, 8, 2),
				frame: &frame{pix: tt.pix, stride: 4, rect: image.Rect(0, 0, 8, 2)},
				shown: make([]byte, 8),
			}
			got, ok := dev.calculateDiff()
			if !ok || got != tt.want {
				t.Errorf("calculateDiff() = %v, %v, want %v", got, ok, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	dev, rec := newDev(t, &Opts{W: 8, H: 2})

	in := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}
	n, err := dev.Write(in)
	if err != nil || n != len(in) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := rec.After(0x5C); !bytes.Equal(got, in) {
		t.Errorf("data = % X, want % X", got, in)
	}
	if got := dev.frame.gray4At(1, 0); got.Y != 0x1 {
		t.Errorf("frame store pixel (1,0) = %d, want 1", got.Y)
	}
}

func TestWriteBufferSizeValidation(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		bufferSize int
		wantErrMsg string
	}{
		{"256x64 too small", 256, 64, 256*64/2 - 1, "ssd1322: invalid buffer size"},
		{"256x64 too large", 256, 64, 256*64/2 + 1, "ssd1322: invalid buffer size"},
		{"128x64 too small", 128, 64, 128*64/2 - 1, "ssd1322: invalid buffer size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, rec := newDev(t, &Opts{W: tt.width, H: tt.height})

			_, err := dev.Write(make([]byte, tt.bufferSize))
			if err == nil {
				t.Fatal("Write should fail with invalid buffer size")
			}
			if err.Error() != tt.wantErrMsg {
				t.Errorf("Write error = %v, want %q", err, tt.wantErrMsg)
			}
			if len(rec.Frames) != 0 {
				t.Errorf("invalid Write sent %d frames", len(rec.Frames))
			}
		})
	}
}

func TestDevSleep(t *testing.T) {
	dev, rec := newDev(t, nil)

	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Commands(); !bytes.Equal(got, []byte{0xAE}) {
		t.Errorf("Halt sent % X, want AE", got)
	}
	if got := dev.State(); got != spidisplay.Sleeping {
		t.Errorf("State() = %v, want Sleeping", got)
	}

	// Test that operations fail while sleeping
	if err := dev.SetContrast(100); !errors.Is(err, ErrNotReady) {
		t.Errorf("SetContrast error = %v, want ErrNotReady", err)
	}
	if err := dev.Invert(true); !errors.Is(err, ErrNotReady) {
		t.Errorf("Invert error = %v, want ErrNotReady", err)
	}
	if _, err := dev.Write(make([]byte, 256*64/2)); !errors.Is(err, ErrNotReady) {
		t.Errorf("Write error = %v, want ErrNotReady", err)
	}
	if err := dev.Draw(dev.Bounds(), image.NewRGBA(dev.Bounds()), image.Point{}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Draw error = %v, want ErrNotReady", err)
	}
	if err := dev.WritePixels(pixels().Pixels()); !errors.Is(err, ErrNotReady) {
		t.Errorf("WritePixels error = %v, want ErrNotReady", err)
	}
	if err := dev.Flush(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Flush error = %v, want ErrNotReady", err)
	}

	rec.Clear()
	if err := dev.Wake(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Commands(); !bytes.Equal(got, []byte{0xAF}) {
		t.Errorf("Wake sent % X, want AF", got)
	}
	if got := dev.State(); got != spidisplay.Ready {
		t.Errorf("State() = %v, want Ready", got)
	}
}

func TestSetContrastAndInvert(t *testing.T) {
	dev, rec := newDev(t, nil)

	if err := dev.SetContrast(0x80); err != nil {
		t.Fatal(err)
	}
	if got := rec.After(0xC1); !bytes.Equal(got, []byte{0x80}) {
		t.Errorf("contrast = % X, want 80", got)
	}
	if err := dev.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Invert(false); err != nil {
		t.Fatal(err)
	}
	if got := rec.Commands(); !bytes.Equal(got, []byte{0xC1, 0xA7, 0xA6}) {
		t.Errorf("commands = % X", got)
	}
}

func TestSetWindowAligns(t *testing.T) {
	dev, rec := newDev(t, nil)

	if err := dev.setWindow(align(image.Rect(5, 2, 9, 3))); err != nil {
		t.Fatal(err)
	}
	// 4..11 → columns (4+112)/4 .. (11+112)/4
	if got := rec.After(0x15); !bytes.Equal(got, []byte{29, 30}) {
		t.Errorf("column window = %v, want [29 30]", got)
	}
	if got := rec.After(0x75); !bytes.Equal(got, []byte{2, 2}) {
		t.Errorf("row window = %v, want [2 2]", got)
	}
}

func TestRSTPulse(t *testing.T) {
	var log wiretest.Log
	rec := wiretest.NewRecorder()
	_, err := New(rec, rec.DC, &Opts{RST: log.Pin("RST"), Delay: log.Sleep})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"RST=Low", "sleep 200ms", "RST=High", "sleep 200ms"}
	if len(log.Events) != len(want) {
		t.Fatalf("events = %v, want %v", log.Events, want)
	}
	for i := range want {
		if log.Events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, log.Events[i], want[i])
		}
	}
}

func TestInitFailure(t *testing.T) {
	boom := errors.New("bus fault")
	dev, rec := newDev(t, nil)
	rec.Err = boom

	if err := dev.Init(); !errors.Is(err, boom) {
		t.Errorf("Init error = %v, want %v", err, boom)
	}
	if got := dev.State(); got != spidisplay.Uninitialized {
		t.Errorf("State() = %v, want Uninitialized", got)
	}

	rec.Err = nil
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if got := dev.State(); got != spidisplay.Ready {
		t.Errorf("State() = %v, want Ready", got)
	}
}

func TestFlushFailure(t *testing.T) {
	boom := errors.New("bus fault")
	dev, rec := newDev(t, nil)
	rec.Err = boom

	if err := dev.Flush(); !errors.Is(err, boom) {
		t.Errorf("Flush error = %v, want %v", err, boom)
	}
	if got := dev.State(); got != spidisplay.Ready {
		t.Errorf("State() = %v, want Ready", got)
	}
}

func TestNewSPI(t *testing.T) {
	port := &spitest.Record{}
	dev, err := NewSPI(port, &gpiotest.Pin{N: "DC"}, &Opts{W: 128, H: 64, Delay: noDelay})
	if err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) == 0 || !bytes.Equal(port.Ops[0].W, []byte{0xFD}) {
		t.Errorf("first transfer = %v, want unlock command", port.Ops)
	}
	if got := dev.String(); got != "ssd1322.Dev{128x64}" {
		t.Errorf("String() = %q", got)
	}
}

var _ spidisplay.Controller = (*Dev)(nil)

var _ display.Drawer = (*Dev)(nil)
