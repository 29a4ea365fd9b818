// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spisim

// Constant wire names. Inputs connected to these read a fixed level;
// connecting an output to them is an error.
const (
	Low  = "low"
	High = "high"
)

const (
	cstLow = iota
	cstHigh
	cstCount
)

// A Socket maps a part's pin names to pin numbers in a circuit.
type Socket struct {
	m map[string]int
	b *builder
}

// Pin returns the pin number allocated to the given pin name.
// It panics if the pin does not exist.
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// Preset declares the initial committed level of the given pin. The first
// snapshot read by any component observes preset values, so a driver can
// make its wires rest at their idle level before its first update runs.
// Only a pin's driver should preset it.
func (s *Socket) Preset(name string, v bool) {
	s.b.presets[s.Pin(name)] = v
}
