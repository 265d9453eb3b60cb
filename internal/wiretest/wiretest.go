// Package wiretest records what a display driver puts on the wire.
package wiretest

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Frame is one transfer as seen on the bus.
type Frame struct {
	Command  bool // DC was low
	Selected bool // CS was low, or no CS pin is watched
	Data     []byte
}

// Recorder is a conn.Conn that keeps every transfer together with the level
// of DC, and optionally CS, at the time it happened.
//
// When Err is set, every transfer from the FailAfter-th one on (counting from
// zero) returns Err and is not recorded.
type Recorder struct {
	conntest.Record
	DC *gpiotest.Pin
	CS interface{ Read() gpio.Level }

	Err       error
	FailAfter int

	mu     sync.Mutex
	n      int
	Frames []Frame
}

// NewRecorder returns a Recorder with a fresh DC pin.
func NewRecorder() *Recorder {
	return &Recorder{DC: &gpiotest.Pin{N: "DC"}}
}

// Tx implements conn.Conn.
func (r *Recorder) Tx(w, read []byte) error {
	r.mu.Lock()
	n := r.n
	r.n++
	r.mu.Unlock()
	if r.Err != nil && n >= r.FailAfter {
		return r.Err
	}
	f := Frame{
		Command:  r.DC.Read() == gpio.Low,
		Selected: r.CS == nil || r.CS.Read() == gpio.Low,
		Data:     append([]byte(nil), w...),
	}
	if err := r.Record.Tx(w, read); err != nil {
		return err
	}
	r.mu.Lock()
	r.Frames = append(r.Frames, f)
	r.mu.Unlock()
	return nil
}

// Commands returns the command bytes in order.
func (r *Recorder) Commands() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []byte
	for _, f := range r.Frames {
		if f.Command {
			out = append(out, f.Data...)
		}
	}
	return out
}

// Data returns every byte sent with DC high, concatenated.
func (r *Recorder) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []byte
	for _, f := range r.Frames {
		if !f.Command {
			out = append(out, f.Data...)
		}
	}
	return out
}

// After returns the bytes sent with DC high after the last occurrence of
// command cmd and before the next command.
func (r *Recorder) After(cmd byte) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []byte
	found := false
	for _, f := range r.Frames {
		switch {
		case f.Command && len(f.Data) == 1 && f.Data[0] == cmd:
			out, found = []byte{}, true
		case f.Command:
			found = false
		case found:
			out = append(out, f.Data...)
		}
	}
	return out
}

// Clear forgets the recorded frames.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = nil
	r.Record.Lock()
	r.Ops = nil
	r.Record.Unlock()
}

// Log is an ordered list of pin and delay events.
type Log struct {
	mu     sync.Mutex
	Events []string
}

func (l *Log) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, fmt.Sprintf(format, args...))
}

// Pin returns an output pin that logs every level it is driven to.
func (l *Log) Pin(name string) *Pin {
	return &Pin{Pin: gpiotest.Pin{N: name}, log: l}
}

// Sleep logs d instead of waiting.
func (l *Log) Sleep(d time.Duration) {
	l.add("sleep %s", d)
}

// Pin is a gpiotest.Pin that writes to a Log.
type Pin struct {
	gpiotest.Pin
	log *Log
}

// Out implements gpio.PinOut.
func (p *Pin) Out(lv gpio.Level) error {
	p.log.add("%s=%s", p.N, lv)
	return p.Pin.Out(lv)
}
