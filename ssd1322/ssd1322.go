package ssd1322

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"iter"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/spidisplay"
	"github.com/flavioheleno/spidisplay/internal/dcspi"
	"github.com/flavioheleno/spidisplay/pixel"
	"github.com/flavioheleno/spidisplay/pixelcolor"
)

const (
	cmdColumnAddr   = 0x15
	cmdWriteRAM     = 0x5C
	cmdRowAddr      = 0x75
	cmdRemap        = 0xA0
	cmdNormal       = 0xA6
	cmdInverse      = 0xA7
	cmdDisplayOff   = 0xAE
	cmdDisplayOn    = 0xAF
	cmdContrast     = 0xC1
	cmdCommandLock  = 0xFD
	cmdMuxRatio     = 0xCA
	cmdExitPartial  = 0xA9
	cmdDefaultGrays = 0xB9
)

// ramColumns is the width of the controller memory in pixels. One column
// address covers 4 pixels.
const ramColumns = 480

// DefaultHz is the SPI clock used by NewSPI when Opts.Hz is zero. The
// controller accepts up to 10MHz.
const DefaultHz = 10 * physic.MegaHertz

// ErrNotReady is returned by drawing operations before Init completes or
// while the display sleeps.
var ErrNotReady = errors.New("ssd1322: not ready")

// Opts is the configuration for the SSD1322 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 256, must be a multiple of 4 and ≤480)
	H int // Height (default: 64, must be ≤128)

	// Rotation and mirroring
	Rotated       bool // 180° rotation
	Sequential    bool // Sequential COM pin configuration
	SwapTopBottom bool // Swap top/bottom display halves

	// Optional pins. Without RST the controller relies on its power-on reset.
	RST gpio.PinOut
	CS  gpio.PinOut // active low, for ports that do not drive CS

	Hz     physic.Frequency    // SPI clock for NewSPI (default: DefaultHz)
	Delay  func(time.Duration) // blocking delay (default: time.Sleep)
	Logger *slog.Logger        // default: discard
}

// Dev is the device handle for the SSD1322 display.
//
// Pixels written with WritePixels only change the local frame store; Flush
// sends the whole store. Draw sends the smallest region that differs from
// what the panel shows.
type Dev struct {
	mu    sync.Mutex
	bus   *dcspi.Bus
	rst   gpio.PinOut
	delay func(time.Duration)
	log   *slog.Logger

	// Display geometry
	rect         image.Rectangle
	columnOffset int // Centers the display on the 480-column RAM, in whole column groups
	remap        [2]byte

	state spidisplay.State

	// Pixel buffers, both W*H/2 bytes
	frame *frame // what the caller drew
	shown []byte // what the panel shows
}

// NewSPI creates a new SSD1322 device connected via SPI.
//
// The SPI port is configured for Opts.Hz, Mode0 (CPOL=0, CPHA=0), 8-bit
// transfers. The dc (Data/Command) GPIO pin must be provided.
//
// opts can be nil to use defaults (256x64 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	hz := DefaultHz
	if opts != nil && opts.Hz != 0 {
		hz = opts.Hz
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1322: %w", err)
	}
	return New(c, dc, opts)
}

// New creates a new SSD1322 device talking over c, resets it and sends the
// initialization sequence.
func New(c conn.Conn, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	// Apply defaults and validate options
	if opts == nil {
		opts = &Opts{}
	}
	w, h := opts.W, opts.H
	if w == 0 && h == 0 {
		w, h = 256, 64
	}
	if w <= 0 || w%4 != 0 || w > ramColumns {
		return nil, errors.New("ssd1322: width must be a multiple of 4 between 4 and 480")
	}
	if h <= 0 || h > 128 {
		return nil, errors.New("ssd1322: height must be between 1 and 128")
	}

	// Remap settings: adjust for rotation and mirroring
	remap := [2]byte{0x14, 0x11}
	if opts.Rotated {
		remap[0] = 0x06
	}
	if opts.Sequential {
		remap[1] |= 0x01
	}
	if opts.SwapTopBottom {
		remap[1] |= 0x02
	}

	rect := image.Rect(0, 0, w, h)
	d := &Dev{
		bus:          dcspi.New(c, dc, opts.CS),
		rst:          opts.RST,
		delay:        opts.Delay,
		log:          opts.Logger,
		rect:         rect,
		columnOffset: ((ramColumns - w) / 2) &^ 3,
		remap:        remap,
		frame:        newFrame(rect),
		shown:        make([]byte, w*h/2),
	}
	if d.delay == nil {
		d.delay = time.Sleep
	}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// State returns the controller state.
func (d *Dev) State() spidisplay.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dev) setState(s spidisplay.State) {
	if s == d.state {
		return
	}
	d.log.Debug("ssd1322: state change", "from", d.state, "to", s)
	d.state = s
}

// Reset pulses the RST pin when one is configured. The controller must be
// initialized again afterwards.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset()
}

func (d *Dev) reset() error {
	d.setState(spidisplay.Resetting)
	if d.rst != nil {
		if err := dcspi.Pulse(d.rst, 200*time.Millisecond, 200*time.Millisecond, d.delay); err != nil {
			d.setState(spidisplay.Uninitialized)
			return fmt.Errorf("ssd1322: reset: %w", err)
		}
	}
	d.setState(spidisplay.Initializing)
	return nil
}

// Init sends the initialization sequence, clears the display RAM and the
// frame store and turns the display on. A controller that was never reset,
// or that sleeps, is reset first.
//
// A transfer failure leaves the controller Uninitialized.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case spidisplay.Uninitialized, spidisplay.Sleeping:
		if err := d.reset(); err != nil {
			return err
		}
	case spidisplay.Ready:
		d.setState(spidisplay.Initializing)
	}
	if err := d.sendInit(); err != nil {
		d.setState(spidisplay.Uninitialized)
		return fmt.Errorf("ssd1322: init: %w", err)
	}
	d.setState(spidisplay.Ready)
	return nil
}

type command struct {
	cmd    byte
	params []byte
}

func (d *Dev) sendInit() error {
	cmds := []command{
		{cmdCommandLock, []byte{0x12}}, // Unlock command codes
		{cmdDisplayOff, nil},
		{0xB3, []byte{0xF2}}, // Clock divider and oscillator frequency
		{cmdMuxRatio, []byte{byte(d.rect.Dy() - 1)}},
		{0xA2, []byte{0x00}}, // Display offset
		{0xA1, []byte{0x00}}, // Start line
		{cmdRemap, d.remap[:]},
		{0xAB, []byte{0x01}},       // Function selection (enable internal VDD)
		{0xB4, []byte{0xA0, 0xFD}}, // VSL (display enhancement)
		{cmdContrast, []byte{0xFF}},
		{0xC7, []byte{0x0F}}, // Master contrast
		{cmdDefaultGrays, nil},
		{0xB1, []byte{0xE2}},       // Phase length
		{0xD1, []byte{0x82, 0x20}}, // Display enhancements
		{0xBB, []byte{0x1F}},       // Pre-charge voltage
		{0xB6, []byte{0x08}},       // Second pre-charge period
		{0xBE, []byte{0x07}},       // VCOMH voltage
		{cmdNormal, nil},
		{cmdExitPartial, nil},
	}
	for _, c := range cmds {
		if err := d.bus.Command(c.cmd, c.params...); err != nil {
			return err
		}
	}
	if err := d.clearRAM(); err != nil {
		return err
	}
	return d.bus.Command(cmdDisplayOn)
}

// clearRAM blanks the frame store and the display RAM behind it.
func (d *Dev) clearRAM() error {
	clear(d.frame.pix)
	clear(d.shown)
	return d.writeRect(d.rect, d.frame.pix)
}

// setWindow selects the RAM window for r and enables writing. Columns are
// addressed in groups of 4 pixels; r must be aligned to them.
func (d *Dev) setWindow(r image.Rectangle) error {
	colStart := byte((r.Min.X + d.columnOffset) / 4)
	colEnd := byte((r.Max.X - 1 + d.columnOffset) / 4)
	if err := d.bus.Command(cmdColumnAddr, colStart, colEnd); err != nil {
		return err
	}
	if err := d.bus.Command(cmdRowAddr, byte(r.Min.Y), byte(r.Max.Y-1)); err != nil {
		return err
	}
	return d.bus.Command(cmdWriteRAM)
}

// writeRect writes pixels, packed row by row, to region r.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	if err := d.setWindow(r); err != nil {
		return err
	}
	return d.bus.Data(pixels)
}

// align widens r to whole 4-pixel column groups. columnOffset is a multiple
// of 4, so display groups are RAM groups.
func align(r image.Rectangle) image.Rectangle {
	r.Min.X &^= 3
	r.Max.X = (r.Max.X + 3) &^ 3
	return r
}

// WritePixels stores every pixel of seq in the frame store, converted to
// Gray4. Nothing is sent until Flush. Pixels outside the display are
// ignored.
func (d *Dev) WritePixels(seq iter.Seq[pixel.Pixel]) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	for p := range seq {
		d.frame.Set(p.Point.X, p.Point.Y, p.Color)
	}
	return nil
}

// Flush sends the whole frame store to the display.
func (d *Dev) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	if err := d.writeFullFrame(); err != nil {
		return err
	}
	copy(d.shown, d.frame.pix)
	return nil
}

func (d *Dev) writeFullFrame() error {
	if err := d.writeRect(d.rect, d.frame.pix); err != nil {
		return fmt.Errorf("ssd1322: flush: %w", err)
	}
	return nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return pixelcolor.Gray4Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw pixel data to the display, two pixels per byte with the
// left pixel in the high nibble. The data must be exactly W*H/2 bytes. It
// replaces the frame store.
func (d *Dev) Write(pixels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return 0, ErrNotReady
	}
	if len(pixels) != len(d.frame.pix) {
		return 0, errors.New("ssd1322: invalid buffer size")
	}
	copy(d.frame.pix, pixels)
	if err := d.writeFullFrame(); err != nil {
		return 0, err
	}
	copy(d.shown, d.frame.pix)
	return len(pixels), nil
}

// Draw draws an image onto the display with differential update.
// The dst rectangle specifies the destination region on the display.
// The src image is positioned at src point sp within the destination.
//
// The image goes through the frame store, so pixels written with
// WritePixels and not flushed yet are sent as well.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}

	// Clip to display bounds
	dst = dst.Intersect(d.rect)
	if !dst.Empty() {
		draw.Draw(d.frame, dst, src, sp, draw.Src)
	}

	changed, ok := d.calculateDiff()
	if !ok {
		return nil
	}
	if err := d.writeRegion(changed); err != nil {
		return fmt.Errorf("ssd1322: draw: %w", err)
	}
	copy(d.shown, d.frame.pix)
	return nil
}

// calculateDiff returns the smallest column-group aligned rectangle holding
// every pixel that differs between the frame store and the panel. ok is
// false when nothing changed.
func (d *Dev) calculateDiff() (r image.Rectangle, ok bool) {
	stride := d.frame.stride
	minRow, maxRow := -1, -1
	minByte, maxByte := stride, -1

	// Scan row by row to find differences
	for y := 0; y < d.rect.Dy(); y++ {
		next := d.frame.pix[y*stride : (y+1)*stride]
		last := d.shown[y*stride : (y+1)*stride]
		if bytes.Equal(next, last) {
			continue
		}
		if minRow < 0 {
			minRow = y
		}
		maxRow = y
		for x := range next {
			if next[x] != last[x] {
				minByte = min(minByte, x)
				maxByte = max(maxByte, x)
			}
		}
	}
	if maxRow < 0 {
		return image.Rectangle{}, false
	}
	// Each byte holds 2 pixels
	return align(image.Rect(minByte*2, minRow, (maxByte+1)*2, maxRow+1)), true
}

// writeRegion sends region r of the frame store. Full-width regions are
// contiguous in the store and go out in one transfer.
func (d *Dev) writeRegion(r image.Rectangle) error {
	if r.Dx() == d.rect.Dx() {
		return d.writeRect(r, d.frame.pix[r.Min.Y*d.frame.stride:r.Max.Y*d.frame.stride])
	}
	if err := d.setWindow(r); err != nil {
		return err
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := d.bus.Data(d.frame.row(y, r.Min.X, r.Max.X)); err != nil {
			return err
		}
	}
	return nil
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	if err := d.bus.Command(cmdContrast, contrast); err != nil {
		return fmt.Errorf("ssd1322: set contrast: %w", err)
	}
	return nil
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	mode := byte(cmdNormal)
	if invert {
		mode = cmdInverse
	}
	if err := d.bus.Command(mode); err != nil {
		return fmt.Errorf("ssd1322: invert: %w", err)
	}
	return nil
}

// Sleep turns the display off. The display RAM and the frame store are
// kept. It does nothing unless the controller is ready.
func (d *Dev) Sleep() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return nil
	}
	if err := d.bus.Command(cmdDisplayOff); err != nil {
		return fmt.Errorf("ssd1322: sleep: %w", err)
	}
	d.setState(spidisplay.Sleeping)
	return nil
}

// Wake turns a sleeping display back on.
func (d *Dev) Wake() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case spidisplay.Ready:
		return nil
	case spidisplay.Sleeping:
	default:
		return ErrNotReady
	}
	if err := d.bus.Command(cmdDisplayOn); err != nil {
		return fmt.Errorf("ssd1322: wake: %w", err)
	}
	d.setState(spidisplay.Ready)
	return nil
}

// Halt turns the display off. Wake or Init bring it back.
func (d *Dev) Halt() error {
	return d.Sleep()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1322.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
