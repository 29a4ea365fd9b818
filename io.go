// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spisim

// Input returns a part with a single output pin "out" driven every tick from
// the return value of f. It is the standard way for a test harness to feed
// stimulus into a circuit.
func Input(f func() bool) NewPartFn {
	p := &PartSpec{
		Name:    "in",
		Outputs: IO("out"),
		Mount: func(s *Socket) []Component {
			out := s.Pin("out")
			return []Component{
				func(c *Circuit) { c.Set(out, f()) },
			}
		}}
	return p.NewPart
}

// Output returns a part with a single input pin "in"; f is called every tick
// with the pin's committed state. Note that an Output observes values one
// tick after the driver sets them.
func Output(f func(value bool)) NewPartFn {
	p := &PartSpec{
		Name:   "out",
		Inputs: IO("in"),
		Mount: func(s *Socket) []Component {
			in := s.Pin("in")
			return []Component{
				func(c *Circuit) { f(c.Get(in)) },
			}
		}}
	return p.NewPart
}
