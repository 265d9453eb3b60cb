// Package ili9341 controls an ILI9341 TFT LCD via SPI.
//
// The ILI9341 is a 240×320 controller with 16-bit RGB565 pixels. It is a
// direct-address controller: pixel data goes to the window most recently set
// with the column and page address commands and is visible immediately, so
// WritePixels puts every pixel on the wire before it returns and Flush does
// nothing.
package ili9341

import (
	"errors"
	"fmt"
	"image"
	"image/color"
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

// Panel size in the default orientation.
const (
	Width  = 240
	Height = 320
)

const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdPASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdVSCRSAD = 0x37
	cmdCOLMOD  = 0x3A
)

// MADCTL bits.
const (
	madctlMY  = 0x80 // row address order
	madctlMX  = 0x40 // column address order
	madctlMV  = 0x20 // row/column exchange
	madctlML  = 0x10 // vertical refresh order
	madctlBGR = 0x08
	madctlMH  = 0x04 // horizontal refresh order
)

// DefaultHz is the SPI clock used by NewSPI when Opts.Hz is zero.
const DefaultHz = 10 * physic.MegaHertz

// batchPixels is the number of pixels buffered before a data transfer.
const batchPixels = 512

// ErrNotReady is returned by drawing operations before Init completes or
// while the panel sleeps.
var ErrNotReady = errors.New("ili9341: not ready")

// Rotation is the panel orientation in degrees, clockwise.
type Rotation int

const (
	NoRotation Rotation = 0
	Rotate90   Rotation = 90
	Rotate180  Rotation = 180
	Rotate270  Rotation = 270
)

// Opts is the configuration for the ILI9341 display.
type Opts struct {
	Rotation Rotation
	Mirror   bool // mirror horizontally
	BGR      bool // panel wired with blue and red swapped

	// Optional pins. Without RST the controller is reset with SWRESET.
	RST gpio.PinOut
	CS  gpio.PinOut // active low, for ports that do not drive CS

	Hz     physic.Frequency    // SPI clock for NewSPI (default: DefaultHz)
	Delay  func(time.Duration) // blocking delay (default: time.Sleep)
	Logger *slog.Logger        // default: discard
}

// Dev is the device handle for the ILI9341 display.
type Dev struct {
	mu    sync.Mutex
	bus   *dcspi.Bus
	rst   gpio.PinOut
	delay func(time.Duration)
	log   *slog.Logger

	rect   image.Rectangle
	madctl byte
	state  spidisplay.State

	// window is the address window last programmed, empty when unknown.
	window image.Rectangle
	buf    [2 * batchPixels]byte
}

// NewSPI connects to p in SPI mode 0 and returns an initialized device.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	hz := DefaultHz
	if opts != nil && opts.Hz != 0 {
		hz = opts.Hz
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9341: %w", err)
	}
	return New(c, dc, opts)
}

// New returns an initialized device talking over c. dc is the data/command
// select pin. opts can be nil to use defaults.
func New(c conn.Conn, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	madctl, err := madctlFor(opts.Rotation, opts.Mirror)
	if err != nil {
		return nil, err
	}
	if opts.BGR {
		madctl |= madctlBGR
	}
	rect := image.Rect(0, 0, Width, Height)
	if opts.Rotation == Rotate90 || opts.Rotation == Rotate270 {
		rect = image.Rect(0, 0, Height, Width)
	}
	d := &Dev{
		bus:    dcspi.New(c, dc, opts.CS),
		rst:    opts.RST,
		delay:  opts.Delay,
		log:    opts.Logger,
		rect:   rect,
		madctl: madctl,
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

func madctlFor(r Rotation, mirror bool) (byte, error) {
	switch {
	case r == NoRotation && !mirror:
		return 0, nil
	case r == Rotate90 && !mirror:
		return madctlMX | madctlMH | madctlMV, nil
	case r == Rotate180 && !mirror:
		return madctlMX | madctlMH | madctlMY | madctlML, nil
	case r == Rotate270 && !mirror:
		return madctlMV | madctlMY | madctlML, nil
	case r == NoRotation:
		return madctlMX | madctlMH, nil
	case r == Rotate90:
		return madctlMX | madctlMH | madctlMY | madctlML | madctlMV, nil
	case r == Rotate180:
		return madctlMY | madctlML, nil
	case r == Rotate270:
		return madctlMV, nil
	}
	return 0, fmt.Errorf("ili9341: invalid rotation %d", int(r))
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
	d.log.Debug("ili9341: state change", "from", d.state, "to", s)
	d.state = s
}

// Reset resets the controller with the RST pin, or with SWRESET when no RST
// pin is configured. The controller must be initialized again afterwards.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset()
}

func (d *Dev) reset() error {
	d.setState(spidisplay.Resetting)
	d.window = image.Rectangle{}
	var err error
	if d.rst != nil {
		err = dcspi.Pulse(d.rst, 10*time.Millisecond, 120*time.Millisecond, d.delay)
	} else if err = d.bus.Command(cmdSWRESET); err == nil {
		d.delay(150 * time.Millisecond)
	}
	if err != nil {
		d.setState(spidisplay.Uninitialized)
		return fmt.Errorf("ili9341: reset: %w", err)
	}
	d.setState(spidisplay.Initializing)
	return nil
}

// Init sends the power-on sequence and turns the display on. A controller
// that was never reset, or that sleeps, is reset first. Calling Init on a
// ready controller sends the sequence again.
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
		return fmt.Errorf("ili9341: init: %w", err)
	}
	d.setState(spidisplay.Ready)
	return nil
}

type command struct {
	cmd    byte
	params []byte
}

// powerOn is sent before MADCTL.
var powerOn = []command{
	{0xEF, []byte{0x03, 0x80, 0x02}},
	{0xCF, []byte{0x00, 0xC1, 0x30}},             // power control B
	{0xED, []byte{0x64, 0x03, 0x12, 0x81}},       // power on sequence control
	{0xE8, []byte{0x85, 0x00, 0x78}},             // driver timing control A
	{0xCB, []byte{0x39, 0x2C, 0x00, 0x34, 0x02}}, // power control A
	{0xF7, []byte{0x20}},                         // pump ratio control
	{0xEA, []byte{0x00, 0x00}},                   // driver timing control B
	{0xC0, []byte{0x23}},                         // power control 1
	{0xC1, []byte{0x10}},                         // power control 2
	{0xC5, []byte{0x3E, 0x28}},                   // VCOM control 1
	{0xC7, []byte{0x86}},                         // VCOM control 2
}

// panelSetup is sent after MADCTL.
var panelSetup = []command{
	{cmdVSCRSAD, []byte{0x00}},
	{cmdCOLMOD, []byte{0x55}},        // 16 bits per pixel
	{0xB1, []byte{0x00, 0x18}},       // frame rate
	{0xB6, []byte{0x08, 0x82, 0x27}}, // display function control
	{0xF2, []byte{0x00}},             // 3 gamma off
	{0x26, []byte{0x01}},             // gamma curve 1
	{0xE0, []byte{0x0F, 0x31, 0x2B, 0x0C, 0x0E, 0x08, 0x4E, 0xF1, 0x37, 0x07, 0x10, 0x03, 0x0E, 0x09, 0x00}},
	{0xE1, []byte{0x00, 0x0E, 0x14, 0x03, 0x11, 0x07, 0x31, 0xC1, 0x48, 0x08, 0x0F, 0x0C, 0x31, 0x36, 0x0F}},
}

func (d *Dev) sendInit() error {
	for _, c := range powerOn {
		if err := d.bus.Command(c.cmd, c.params...); err != nil {
			return err
		}
	}
	if err := d.bus.Command(cmdMADCTL, d.madctl); err != nil {
		return err
	}
	for _, c := range panelSetup {
		if err := d.bus.Command(c.cmd, c.params...); err != nil {
			return err
		}
	}
	return d.wake()
}

func (d *Dev) wake() error {
	if err := d.bus.Command(cmdSLPOUT); err != nil {
		return err
	}
	d.delay(120 * time.Millisecond)
	return d.bus.Command(cmdDISPON)
}

// Sleep turns the display off and puts the controller in sleep mode. It
// does nothing unless the controller is ready.
func (d *Dev) Sleep() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return nil
	}
	if err := d.bus.Command(cmdDISPOFF); err != nil {
		return fmt.Errorf("ili9341: sleep: %w", err)
	}
	if err := d.bus.Command(cmdSLPIN); err != nil {
		return fmt.Errorf("ili9341: sleep: %w", err)
	}
	d.delay(5 * time.Millisecond)
	d.setState(spidisplay.Sleeping)
	return nil
}

// Wake leaves sleep mode. The panel keeps its memory while asleep.
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
	if err := d.wake(); err != nil {
		return fmt.Errorf("ili9341: wake: %w", err)
	}
	d.setState(spidisplay.Ready)
	return nil
}

// SetWindow sets the address window for the pixel data that follows and
// starts a memory write. r is clipped to the panel.
func (d *Dev) SetWindow(r image.Rectangle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	return d.setWindow(r)
}

// setWindow only sends the addresses that changed since the last window.
func (d *Dev) setWindow(r image.Rectangle) error {
	known := !d.window.Empty()
	if !known || r.Min.X != d.window.Min.X || r.Max.X != d.window.Max.X {
		x0, x1 := r.Min.X, r.Max.X-1
		if err := d.bus.Command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
			d.window = image.Rectangle{}
			return fmt.Errorf("ili9341: set window: %w", err)
		}
	}
	if !known || r.Min.Y != d.window.Min.Y || r.Max.Y != d.window.Max.Y {
		y0, y1 := r.Min.Y, r.Max.Y-1
		if err := d.bus.Command(cmdPASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
			d.window = image.Rectangle{}
			return fmt.Errorf("ili9341: set window: %w", err)
		}
	}
	d.window = r
	if err := d.bus.Command(cmdRAMWR); err != nil {
		return fmt.Errorf("ili9341: set window: %w", err)
	}
	return nil
}

func wire(c color.Color) [2]byte {
	return pixelcolor.RGB565Model.Convert(c).(pixelcolor.RGB565).Wire()
}

// WritePixels sends every pixel of seq. A run of pixels that are horizontal
// neighbours shares one window from the first pixel to the right edge of the
// panel; any other pixel opens a new window. Pixels outside the panel are
// ignored.
func (d *Dev) WritePixels(seq iter.Seq[pixel.Pixel]) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	n := 0
	open := false
	var next image.Point
	for p := range seq {
		if !p.Point.In(d.rect) {
			continue
		}
		if !open || p.Point != next || n == len(d.buf) {
			if err := d.sendBatch(n); err != nil {
				return err
			}
			n = 0
			if !open || p.Point != next {
				r := image.Rect(p.Point.X, p.Point.Y, d.rect.Max.X, p.Point.Y+1)
				if err := d.setWindow(r); err != nil {
					return err
				}
				open = true
			}
		}
		w := wire(p.Color)
		d.buf[n], d.buf[n+1] = w[0], w[1]
		n += 2
		next = p.Point.Add(image.Pt(1, 0))
	}
	return d.sendBatch(n)
}

func (d *Dev) sendBatch(n int) error {
	if err := d.bus.Data(d.buf[:n]); err != nil {
		return fmt.Errorf("ili9341: write pixels: %w", err)
	}
	return nil
}

// Flush implements spidisplay.Controller. Pixels are already on the panel.
func (d *Dev) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	return nil
}

// FillRect paints r, clipped to the panel, with c.
func (d *Dev) FillRect(r image.Rectangle, c color.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	if err := d.setWindow(r); err != nil {
		return err
	}
	w := wire(c)
	for i := 0; i < len(d.buf); i += 2 {
		d.buf[i], d.buf[i+1] = w[0], w[1]
	}
	for left := 2 * r.Dx() * r.Dy(); left > 0; left -= len(d.buf) {
		if err := d.sendBatch(min(left, len(d.buf))); err != nil {
			return err
		}
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return pixelcolor.RGB565Model
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer. The src pixel at sp lands on dst.Min.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	clipped := dst.Intersect(d.rect)
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	if err := d.setWindow(clipped); err != nil {
		return err
	}
	n := 0
	for y := 0; y < clipped.Dy(); y++ {
		for x := 0; x < clipped.Dx(); x++ {
			if n == len(d.buf) {
				if err := d.sendBatch(n); err != nil {
					return err
				}
				n = 0
			}
			w := wire(src.At(sp.X+x, sp.Y+y))
			d.buf[n], d.buf[n+1] = w[0], w[1]
			n += 2
		}
	}
	return d.sendBatch(n)
}

// Invert turns display inversion on or off.
func (d *Dev) Invert(invert bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != spidisplay.Ready {
		return ErrNotReady
	}
	cmd := byte(cmdINVOFF)
	if invert {
		cmd = cmdINVON
	}
	if err := d.bus.Command(cmd); err != nil {
		return fmt.Errorf("ili9341: invert: %w", err)
	}
	return nil
}

// Halt implements conn.Resource. It puts the panel to sleep.
func (d *Dev) Halt() error {
	return d.Sleep()
}

func (d *Dev) String() string {
	return fmt.Sprintf("ili9341.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
