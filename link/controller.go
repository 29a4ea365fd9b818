// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package link

import (
	hw "github.com/db47h/spisim"
)

type ctrlState uint8

const (
	ctrlIdle ctrlState = iota
	ctrlActive
)

// A Controller drives the select, clock and mosi wires and samples miso.
// It is both the part mounted into the circuit and the handle through which
// the owning scheduler triggers transfers and reads results. All methods
// must be called from the goroutine stepping the circuit; the simulation is
// strictly lockstep and the handle is not safe for concurrent use.
type Controller struct {
	payload byte

	state   ctrlState
	pending bool
	send    ShiftRegister
	recv    ShiftRegister
	samples int  // sample events remaining in the current transfer
	driven  int  // drive events performed in the current transfer
	clk     bool // clock level committed last tick
	obsClk  bool // clock level observed in the previous snapshot
	out     bool // level held on mosi between drive events
	done    bool
	rx      byte
}

// NewController returns a controller that sends payload on every transfer.
// The canonical exchange uses the Payload constant.
func NewController(payload byte) *Controller {
	return &Controller{payload: payload}
}

// BeginTransfer requests a transfer. The request takes effect on the next
// tick. Calls made while a transfer is active or already requested are
// dropped silently: there is no queueing and no error.
func (t *Controller) BeginTransfer() {
	if t.state != ctrlIdle || t.pending {
		return
	}
	t.pending = true
}

// Done reports completion. It is true for exactly one tick, the one on
// which the transfer completed and select was deasserted.
func (t *Controller) Done() bool { return t.done }

// ReceivedByte returns the byte latched at the end of the last completed
// transfer. It is meaningful only once Done has fired and holds its value
// until the next transfer completes.
func (t *Controller) ReceivedByte() byte { return t.rx }

// Part wraps the controller into a circuit part. Pins: inputs miso;
// outputs ss, sck, mosi.
func (t *Controller) Part(connections string) hw.Part {
	return (&hw.PartSpec{
		Name:    "Controller",
		Inputs:  hw.IO(WireMISO),
		Outputs: hw.IO(WireSelect + ", " + WireClock + ", " + WireMOSI),
		Mount:   t.mount,
	}).NewPart(connections)
}

func (t *Controller) mount(s *hw.Socket) []hw.Component {
	ss, sck, mosi := s.Pin(WireSelect), s.Pin(WireClock), s.Pin(WireMOSI)
	miso := s.Pin(WireMISO)
	// select idles deasserted (high, active low); clock and mosi idle low
	s.Preset(WireSelect, true)
	return []hw.Component{
		func(c *hw.Circuit) { t.tick(c, ss, sck, mosi, miso) },
	}
}

func (t *Controller) tick(c *hw.Circuit, ss, sck, mosi, miso int) {
	t.done = false

	if t.state == ctrlIdle {
		if !t.pending {
			c.Set(ss, true)
			c.Set(sck, false)
			c.Set(mosi, false)
			return
		}
		// Idle -> Active: assert select, load the shift registers and put
		// the first payload bit on the wire. The armed bit must be stable
		// in the committed snapshot before the first rising clock edge,
		// so the first drive event coincides with the select assert.
		t.pending = false
		t.state = ctrlActive
		t.send.Load(t.payload)
		t.recv.Load(0)
		t.samples = Width
		t.driven = 0
		t.clk = false
		t.obsClk = false
		t.out = t.send.ShiftOut()
		t.driven++
		c.Set(ss, false)
		c.Set(sck, false)
		c.Set(mosi, t.out)
		return
	}

	// Sample miso on each rising clock transition observed in the
	// committed snapshot. Observing our own clock keeps sampling in the
	// same one-tick-delayed time frame as the responder's drive events.
	snapClk := c.Get(sck)
	if snapClk && !t.obsClk {
		t.recv.ShiftIn(c.Get(miso))
		t.samples--
	}
	t.obsClk = snapClk

	if t.samples == 0 {
		// transfer complete: deassert select, force the clock low, latch
		// the result and report completion for this one tick
		t.state = ctrlIdle
		t.clk = false
		t.rx = t.recv.Byte()
		t.done = true
		c.Set(ss, true)
		c.Set(sck, false)
		c.Set(mosi, false)
		return
	}

	// the clock toggles once per tick while active; each transition toward
	// low drives the next payload bit
	t.clk = !t.clk
	if !t.clk && t.driven < Width {
		t.out = t.send.ShiftOut()
		t.driven++
	}
	c.Set(ss, false)
	c.Set(sck, t.clk)
	c.Set(mosi, t.out)
}
