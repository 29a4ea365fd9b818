// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spisim

import (
	"github.com/pkg/errors"
)

// A Component is a per-tick state transition function. It reads the previous
// tick's committed wire states through Circuit.Get and writes the next states
// through Circuit.Set. A component must drive each of its output pins on
// every tick: frames are swapped after each tick, so a skipped write would
// expose a two-tick-old value.
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query the socket
// for assigned pin numbers and return closures around these pin numbers.
//
// For example, an inverter can be defined like this:
//
//	not := &PartSpec{
//		Name:    "Not",
//		Inputs:  IO("in"),
//		Outputs: IO("out"),
//		Mount: func(s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func(c *Circuit) { c.Set(out, !c.Get(in)) },
//			}
//		}}
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Must be distinct. Use IO() to expand a
	// comma-separated list.
	Inputs []string
	// Output pin names. Must be distinct. A part is the sole driver of the
	// wires its output pins connect to.
	Outputs []string

	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart wraps p with the given connections into a Part. The connections
// string maps the part's pin names to wire names in the circuit, e.g.
// "ss=ss, sck=sck". NewPart panics if the connection description is
// malformed; connecting parts is program structure, not runtime input.
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// A NewPartFn is a function that takes a connection description and returns
// a new Part. See ParseConnections for the syntax.
type NewPartFn func(connections string) Part

// A Part wraps a part specification together with its wire connections
// within a circuit.
type Part struct {
	*PartSpec
	conns map[string]string
}

// Circuit is a runnable circuit simulation.
//
// Wire states are double buffered: during a tick every component reads the
// snapshot committed at the end of the previous tick and writes into the
// next frame. New values become visible only once every component has run.
// Components are evaluated sequentially in mount order; since reads always
// come from the previous snapshot, evaluation order cannot be observed.
type Circuit struct {
	s0    []bool // committed wire states (previous tick)
	s1    []bool // wire states being computed (current tick)
	comps []Component
	count int // wire count
	ticks uint64
}

type builder struct {
	c       *Circuit
	wires   map[string]int // wire name -> pin number
	drivers map[int]string // pin number -> driving part pin, for error reporting
	presets map[int]bool
}

func (b *builder) pinOrNew(wire string) int {
	n, ok := b.wires[wire]
	if !ok {
		n = b.c.allocPin()
		b.wires[wire] = n
	}
	return n
}

// mount connects and mounts a single part.
func (b *builder) mount(p Part) ([]Component, error) {
	// reject connections that name no pin of the part
	for k := range p.conns {
		if !contains(p.Inputs, k) && !contains(p.Outputs, k) {
			return nil, errors.Errorf("invalid pin name %s for part %s", k, p.Name)
		}
	}
	sock := &Socket{m: make(map[string]int, len(p.Inputs)+len(p.Outputs)), b: b}
	for _, in := range p.Inputs {
		if wire, ok := p.conns[in]; ok {
			sock.m[in] = b.pinOrNew(wire)
		} else {
			// unconnected inputs are tied low
			sock.m[in] = cstLow
		}
	}
	for _, out := range p.Outputs {
		var n int
		if wire, ok := p.conns[out]; ok {
			switch wire {
			case Low, High:
				return nil, errors.Errorf("output pin %s.%s connected to constant %q", p.Name, out, wire)
			}
			n = b.pinOrNew(wire)
		} else {
			// unconnected outputs drive anonymous wires
			n = b.c.allocPin()
		}
		if prev, ok := b.drivers[n]; ok {
			return nil, errors.Errorf("wire driven by both %s and %s.%s", prev, p.Name, out)
		}
		b.drivers[n] = p.Name + "." + out
		sock.m[out] = n
	}
	return p.Mount(sock), nil
}

func contains(names []string, n string) bool {
	for _, v := range names {
		if v == n {
			return true
		}
	}
	return false
}

// New builds a new circuit from the given parts.
//
// Parts sharing a wire name are connected to the same wire. Every wire has
// exactly one driver: New fails if two output pins map to the same wire. A
// wire that no output drives is not an error; readers of such a wire simply
// observe its preset or zero value. Validating bus hookup is the caller's
// business.
func New(parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	c := &Circuit{count: cstCount}
	b := &builder{
		c:       c,
		wires:   map[string]int{Low: cstLow, High: cstHigh},
		drivers: make(map[int]string),
		presets: make(map[int]bool),
	}
	for _, p := range parts {
		ups, err := b.mount(p)
		if err != nil {
			return nil, errors.Wrap(err, "failed to mount part "+p.Name)
		}
		c.comps = append(c.comps, ups...)
	}
	c.s0 = make([]bool, c.count)
	c.s1 = make([]bool, c.count)
	c.s0[cstHigh] = true
	c.s1[cstHigh] = true
	for n, v := range b.presets {
		c.s0[n] = v
		c.s1[n] = v
	}
	return c, nil
}

// allocPin allocates a pin and returns its number.
func (c *Circuit) allocPin() int {
	cnt := c.count
	c.count++
	return cnt
}

// Get returns the committed state of pin n, i.e. the value visible since the
// end of the previous tick. The value of n should be obtained in a MountFn
// by a call to one of the Socket methods.
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state of pin n for the tick being computed. The new value
// becomes visible to Get only after the current Step completes.
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

// Toggle sets pin n to the inverse of its committed state.
func (c *Circuit) Toggle(n int) {
	c.s1[n] = !c.s0[n]
}

// Step advances the simulation by one tick: every component computes its
// next state from the previous snapshot, then all new wire states are
// committed at once.
func (c *Circuit) Step() {
	c.s1[cstLow] = false
	c.s1[cstHigh] = true
	for _, f := range c.comps {
		f(c)
	}
	c.s0, c.s1 = c.s1, c.s0
	c.ticks++
}

// Ticks returns the number of ticks elapsed since the circuit was built.
func (c *Circuit) Ticks() uint64 {
	return c.ticks
}

// Size returns the component count in the circuit.
func (c *Circuit) Size() int { return len(c.comps) }
