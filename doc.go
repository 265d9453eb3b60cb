// Package spidisplay renders vector shapes and bitmap text on small SPI
// displays.
//
// Rendering and hardware meet in one place. Shapes from the primitives
// package and text runs from the fonts package produce lazy sequences of
// colored pixels; a Target clips them to the panel and forwards the rest to
// a Controller, which turns them into command and data bytes on the SPI
// link.
//
// Two controller families are supported:
//
//   - ili9341: a 240×320 RGB565 LCD. It is direct-address: every pixel
//     reaches the panel before WritePixels returns, and Flush does nothing.
//   - ssd1322: a grayscale OLED up to 480×128. It is frame-buffered: pixels
//     land in a local frame store and only reach the panel on Flush.
//
// # Hardware Connection
//
// Both controllers use the same wiring:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, a GPIO, or GND if always selected
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"github.com/flavioheleno/spidisplay"
//		"github.com/flavioheleno/spidisplay/fonts"
//		"github.com/flavioheleno/spidisplay/ili9341"
//		"github.com/flavioheleno/spidisplay/pixelcolor"
//		"github.com/flavioheleno/spidisplay/primitives"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		port, _ := spireg.Open("")
//		dev, _ := ili9341.NewSPI(port, gpioreg.ByName("GPIO25"), &ili9341.Opts{
//			RST: gpioreg.ByName("GPIO24"),
//		})
//		defer dev.Halt()
//
//		t := spidisplay.NewTarget(dev)
//		t.Clear(pixelcolor.Black)
//		t.Draw(
//			primitives.NewCircle(image.Pt(120, 37), 36, primitives.Stroked(pixelcolor.Green, 3)),
//			fonts.NewText("Hello World!", image.Pt(5, 110), fonts.Font6x8,
//				fonts.TextStyle{Color: pixelcolor.Red}),
//		)
//		t.Flush()
//	}
//
// Call Flush after drawing even on direct-address controllers, so the same
// code drives both families.
//
// # Compatibility with periph.io
//
// Both drivers implement the display.Drawer interface from periph.io and
// accept any conn.Conn, so they can be tested against conntest and spitest
// fakes.
package spidisplay
