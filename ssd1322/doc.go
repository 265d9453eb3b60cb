// Package ssd1322 controls a SSD1322 OLED display via SPI.
//
// The SSD1322 is a 4-bit grayscale OLED controller supporting up to 480×128 pixels.
// This driver implements the display.Drawer interface from periph.io and the
// spidisplay.Controller interface.
//
// # Display Characteristics
//
// - 4-bit grayscale with 16 intensity levels (0-15)
// - Support for various resolutions (typically 256×64 or 128×64)
// - Adjustable contrast (0-255)
// - Display inversion
// - 480-column internal RAM with automatic centering for smaller displays
//
// # Frame Store
//
// The SSD1322 only updates its RAM through address windows, and one column
// address covers 4 pixels. The driver therefore keeps a frame store of
// W×H/2 bytes, allocated once by New:
//
//   - WritePixels changes the frame store only. Nothing reaches the wire.
//   - Flush sends the whole frame store.
//   - Draw renders an image into the frame store and sends the smallest
//     region that differs from what the panel shows.
//   - Write replaces the frame store with raw packed pixels and sends it.
//
// # Basic Usage
//
//	dev, _ := ssd1322.NewSPI(spiBus, dcPin, &ssd1322.Opts{
//		W:   256,
//		H:   64,
//		RST: rstPin, // Optional reset pin
//	})
//	defer dev.Halt()
//
//	t := spidisplay.NewTarget(dev)
//	t.Draw(primitives.NewRectangle(image.Pt(0, 0), image.Pt(255, 63),
//		primitives.Stroked(pixelcolor.Gray4On, 1)))
//	t.Flush()
//
// When RST is set, the driver pulls it low for 200ms and waits 200ms after
// releasing it. Without RST the driver relies on power-on reset.
//
// # Grayscale Colors
//
// Any color.Color is converted to pixelcolor.Gray4 by luma. pixelcolor.Gray4On
// is the fully lit level and pixelcolor.On maps to it.
//
// # Display Resolution
//
//	Opts{W: 256, H: 64}  // 256×64 (most common)
//	Opts{W: 128, H: 64}  // 128×64 (smaller displays)
//	Opts{W: 256, H: 128} // 256×128 (extended height, if available)
//
// Width must be a multiple of 4 and ≤480. Height must be ≤128.
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/SSD1322.pdf
package ssd1322
