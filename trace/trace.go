// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trace records committed bus states tick by tick and renders them
// as text waveforms. A Recorder is a pure observer: it has only input pins
// and never drives a wire.
package trace

import (
	"strings"

	"github.com/gammazero/deque"

	hw "github.com/db47h/spisim"
)

// DefaultDepth is the number of samples kept when no depth is configured.
const DefaultDepth = 256

// A Sample is the committed state of the four bus wires at the end of one
// tick, as visible to any reader on the following tick.
type Sample struct {
	Tick   uint64
	Select bool // true = deasserted (select is active low)
	Clock  bool
	MOSI   bool
	MISO   bool
}

// A Recorder captures one Sample per tick into a bounded history. Once the
// history is full, the oldest sample is discarded for each new one.
type Recorder struct {
	hist  deque.Deque[Sample]
	depth int
}

// NewRecorder returns a recorder keeping at most depth samples. A depth of
// zero or less selects DefaultDepth.
func NewRecorder(depth int) *Recorder {
	if depth <= 0 {
		depth = DefaultDepth
	}
	r := &Recorder{depth: depth}
	r.hist.Grow(depth)
	return r
}

// Part wraps the recorder into a circuit part. Pins: inputs ss, sck, mosi,
// miso.
func (r *Recorder) Part(connections string) hw.Part {
	return (&hw.PartSpec{
		Name:   "Recorder",
		Inputs: hw.IO("ss, sck, mosi, miso"),
		Mount: func(s *hw.Socket) []hw.Component {
			ss, sck := s.Pin("ss"), s.Pin("sck")
			mosi, miso := s.Pin("mosi"), s.Pin("miso")
			return []hw.Component{
				func(c *hw.Circuit) {
					if r.hist.Len() == r.depth {
						r.hist.PopFront()
					}
					r.hist.PushBack(Sample{
						Tick:   c.Ticks(),
						Select: c.Get(ss),
						Clock:  c.Get(sck),
						MOSI:   c.Get(mosi),
						MISO:   c.Get(miso),
					})
				},
			}
		}}).NewPart(connections)
}

// Samples returns a copy of the recorded history, oldest first.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, r.hist.Len())
	for i := range out {
		out[i] = r.hist.At(i)
	}
	return out
}

// Reset discards the recorded history.
func (r *Recorder) Reset() {
	r.hist.Clear()
}

// Transitions counts the level changes of one wire over the recorded
// history. The wire is selected by an accessor, e.g.
//
//	n := rec.Transitions(func(s trace.Sample) bool { return s.Clock })
func (r *Recorder) Transitions(wire func(Sample) bool) int {
	n := 0
	for i := 1; i < r.hist.Len(); i++ {
		if wire(r.hist.At(i)) != wire(r.hist.At(i-1)) {
			n++
		}
	}
	return n
}

// wireRows fixes the rendering order of the waveform rows.
var wireRows = []struct {
	name string
	get  func(Sample) bool
}{
	{"ss  ", func(s Sample) bool { return s.Select }},
	{"sck ", func(s Sample) bool { return s.Clock }},
	{"mosi", func(s Sample) bool { return s.MOSI }},
	{"miso", func(s Sample) bool { return s.MISO }},
}

// Waveform renders the recorded history as a text waveform, one row per
// wire, one rune per tick: ▔ for high, ▁ for low.
func (r *Recorder) Waveform() string {
	return Waveform(r.Samples())
}

// Waveform renders a sample slice as a text waveform.
func Waveform(samples []Sample) string {
	var b strings.Builder
	for _, row := range wireRows {
		b.WriteString(row.name)
		b.WriteRune(' ')
		for _, s := range samples {
			if row.get(s) {
				b.WriteRune('▔')
			} else {
				b.WriteRune('▁')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}
