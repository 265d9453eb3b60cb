// Package dcspi frames command and data transfers for display controllers
// that use a data/command select line next to a SPI link.
package dcspi

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Bus sends commands and data over c. DC is driven low for command bytes and
// high for everything else. CS, when set, is active low and only asserted for
// the duration of a transfer.
type Bus struct {
	c     conn.Conn
	dc    gpio.PinOut
	cs    gpio.PinOut
	maxTx int
}

// New returns a Bus. cs may be nil when chip select is handled by the SPI
// port or tied low.
func New(c conn.Conn, dc, cs gpio.PinOut) *Bus {
	b := &Bus{c: c, dc: dc, cs: cs}
	if l, ok := c.(conn.Limits); ok {
		b.maxTx = l.MaxTxSize()
	}
	return b
}

// Command sends cmd with DC low, then params, if any, with DC high.
func (b *Bus) Command(cmd byte, params ...byte) error {
	if err := b.tx(gpio.Low, []byte{cmd}); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return b.tx(gpio.High, params)
}

// Data sends p with DC high.
func (b *Bus) Data(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	return b.tx(gpio.High, p)
}

// tx is the only path to the wire. DC is settled before CS is asserted and
// stays untouched until CS is released, so a transfer never sees DC change.
func (b *Bus) tx(l gpio.Level, p []byte) (err error) {
	if err := b.dc.Out(l); err != nil {
		return fmt.Errorf("dcspi: failed to set DC %s: %w", l, err)
	}
	if b.cs != nil {
		if err := b.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("dcspi: failed to assert CS: %w", err)
		}
		defer func() {
			if e := b.cs.Out(gpio.High); e != nil && err == nil {
				err = fmt.Errorf("dcspi: failed to release CS: %w", e)
			}
		}()
	}
	for len(p) > 0 {
		n := len(p)
		if b.maxTx > 0 && n > b.maxTx {
			n = b.maxTx
		}
		if err := b.c.Tx(p[:n], nil); err != nil {
			return fmt.Errorf("dcspi: transfer failed: %w", err)
		}
		p = p[n:]
	}
	return nil
}

func (b *Bus) String() string {
	return b.c.String()
}

// Pulse drives rst low for low, then high, then waits settle. sleep is the
// blocking delay used for both waits.
func Pulse(rst gpio.PinOut, low, settle time.Duration, sleep func(time.Duration)) error {
	if err := rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("dcspi: failed to pull RST low: %w", err)
	}
	sleep(low)
	if err := rst.Out(gpio.High); err != nil {
		return fmt.Errorf("dcspi: failed to pull RST high: %w", err)
	}
	sleep(settle)
	return nil
}
