// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package link models a complete SPI mode-0 exchange between a bus controller
and a fixed-response peripheral as parts for the spisim kernel.

The bus has four wires, each with a single driver:

	ss	select, active low, driven by the controller
	sck	clock, idle low, toggles once per tick during a transfer
	mosi	controller data out, idle low
	miso	responder data out, undefined while idle

One transfer moves exactly one byte in each direction, MSB first: the
controller shifts its payload out on mosi and samples miso on each rising
clock transition; the responder reloads its fixed reply on the asserting
select edge and shifts it out on falling clock transitions. Eight full clock
cycles later the controller deasserts select, latches the received byte and
reports completion for exactly one tick.
*/
package link

import (
	hw "github.com/db47h/spisim"
)

// Canonical protocol constants for the fixed exchange.
const (
	Payload byte = 0xA5 // controller -> responder
	Reply   byte = 0x3C // responder -> controller
)

// Bus wire names used by both parts.
const (
	WireSelect = "ss"
	WireClock  = "sck"
	WireMOSI   = "mosi"
	WireMISO   = "miso"
)

// busConns connects a part's bus pins to the wires of the same name.
const busConns = "ss=ss, sck=sck, mosi=mosi, miso=miso"

// Connect builds a circuit wiring ctrl and resp pin for pin on the four bus
// wires. Extra parts (trace recorders, harness probes) attach to the same
// wires by name.
func Connect(ctrl *Controller, resp *Responder, extra ...hw.Part) (*hw.Circuit, error) {
	parts := make([]hw.Part, 0, len(extra)+2)
	parts = append(parts, ctrl.Part(busConns), resp.Part(busConns))
	parts = append(parts, extra...)
	return hw.New(parts...)
}
