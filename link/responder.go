// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package link

import (
	hw "github.com/db47h/spisim"
)

type respState uint8

const (
	respIdle respState = iota
	respActive
)

// A Responder is the fixed-response end of the link. It is purely reactive:
// it observes select and clock edges in the committed snapshot and drives
// only its own data wire. The byte sampled from mosi is discarded.
type Responder struct {
	reply byte

	state respState
	send  ShiftRegister
	bits  int
	sel   bool // select level observed in the previous snapshot
	clk   bool // clock level observed in the previous snapshot
	out   bool // level held on miso; last driven bit persists while idle
}

// NewResponder returns a responder that answers every transfer with reply.
// The canonical exchange uses the Reply constant.
func NewResponder(reply byte) *Responder {
	// select is active low: start with the line seen deasserted so the
	// first committed snapshot does not read as an asserting edge
	return &Responder{reply: reply, sel: true}
}

// Part wraps the responder into a circuit part. Pins: inputs ss, sck, mosi;
// outputs miso.
func (r *Responder) Part(connections string) hw.Part {
	return (&hw.PartSpec{
		Name:    "Responder",
		Inputs:  hw.IO(WireSelect + ", " + WireClock + ", " + WireMOSI),
		Outputs: hw.IO(WireMISO),
		Mount:   r.mount,
	}).NewPart(connections)
}

func (r *Responder) mount(s *hw.Socket) []hw.Component {
	// the mosi pin is part of the bus contract but its content is ignored:
	// whatever the controller sends is discarded bit by bit
	ss, sck := s.Pin(WireSelect), s.Pin(WireClock)
	miso := s.Pin(WireMISO)
	return []hw.Component{
		func(c *hw.Circuit) { r.tick(c, ss, sck, miso) },
	}
}

func (r *Responder) tick(c *hw.Circuit, ss, sck, miso int) {
	sel := c.Get(ss)
	clk := c.Get(sck)

	// select edges take priority over clock edges
	switch {
	case !sel && r.sel:
		// asserting edge: reload unconditionally, even mid-abandoned
		// transfer, so no stale bit count survives between transfers.
		// The first reply bit goes on the wire together with the edge so
		// it is stable before the controller's first rising clock edge.
		r.state = respActive
		r.send.Load(r.reply)
		r.bits = Width
		r.out = r.send.ShiftOut()
		r.bits--
	case sel && !r.sel:
		// deasserting edge: stop shifting. An early deassert abandons the
		// transfer silently; the partial output is a valid outcome.
		r.state = respIdle
	case r.state == respActive && r.bits > 0 && !clk && r.clk:
		// falling clock edge: next reply bit
		r.out = r.send.ShiftOut()
		r.bits--
	}

	r.sel, r.clk = sel, clk
	c.Set(miso, r.out)
}
