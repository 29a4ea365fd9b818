package link_test

import (
	"testing"

	hw "github.com/db47h/spisim"
	"github.com/db47h/spisim/link"
)

const busConns = "ss=ss, sck=sck, mosi=mosi, miso=miso"

// snap is one committed bus state as seen by an external monitor.
type snap struct {
	sel, clk, mosi, miso bool
}

// monitor returns a pure observer part appending one snapshot per tick.
// Like any reader, it sees values one tick after they are committed.
func monitor(h *[]snap) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:   "Monitor",
		Inputs: hw.IO("ss, sck, mosi, miso"),
		Mount: func(s *hw.Socket) []hw.Component {
			ss, sck := s.Pin("ss"), s.Pin("sck")
			mosi, miso := s.Pin("mosi"), s.Pin("miso")
			return []hw.Component{
				func(c *hw.Circuit) {
					*h = append(*h, snap{c.Get(ss), c.Get(sck), c.Get(mosi), c.Get(miso)})
				},
			}
		}}).NewPart
}

// line returns a harness-driven wire with a defined idle level.
func line(f func() bool, idle bool) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "Line",
		Outputs: hw.IO("out"),
		Mount: func(s *hw.Socket) []hw.Component {
			out := s.Pin("out")
			s.Preset("out", idle)
			return []hw.Component{
				func(c *hw.Circuit) { c.Set(out, f()) },
			}
		}}).NewPart
}

// risingSamples returns the values a mode-0 receiver would take from the
// given wire: its level in the first snapshot of each high clock phase
// within the select-low span.
func risingSamples(h []snap, wire func(snap) bool) []bool {
	var out []bool
	for i := 1; i < len(h); i++ {
		if !h[i].sel && h[i].clk && !h[i-1].clk {
			out = append(out, wire(h[i]))
		}
	}
	return out
}

// halfTransitions counts clock level changes within the select-low span.
func halfTransitions(h []snap) int {
	n := 0
	for i := 1; i < len(h); i++ {
		if (!h[i].sel || !h[i-1].sel) && h[i].clk != h[i-1].clk {
			n++
		}
	}
	return n
}

func bitsOf(v byte) []bool {
	out := make([]bool, 8)
	for i := range out {
		out[i] = v&(0x80>>i) != 0
	}
	return out
}

func runTransfer(t *testing.T, c *hw.Circuit, ctrl *link.Controller) byte {
	t.Helper()
	ctrl.BeginTransfer()
	for i := 0; i < 64; i++ {
		c.Step()
		if ctrl.Done() {
			return ctrl.ReceivedByte()
		}
	}
	t.Fatal("transfer did not complete")
	return 0
}

// Full exchange: payload out, reply in, both MSB first.
func Test_exchange(t *testing.T) {
	var h []snap
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp, monitor(&h)(busConns))
	if err != nil {
		t.Fatal(err)
	}

	// run one extra tick so the monitor sees the committed deassert
	got := runTransfer(t, c, ctrl)
	c.Step()

	if got != link.Reply {
		t.Fatalf("received 0x%02X, expected 0x%02X", got, link.Reply)
	}

	// observed controller output sequence, MSB first: 0xA5 = 10100101
	want := []bool{true, false, true, false, false, true, false, true}
	mosiBits := risingSamples(h, func(s snap) bool { return s.mosi })
	if len(mosiBits) != 8 {
		t.Fatalf("expected 8 mosi bits, got %d", len(mosiBits))
	}
	for i := range want {
		if mosiBits[i] != want[i] {
			t.Fatalf("mosi bit %d: expected %v, got %v (full: %v)", i, want[i], mosiBits[i], mosiBits)
		}
	}

	// the reply travels the same way on miso
	misoBits := risingSamples(h, func(s snap) bool { return s.miso })
	wantMiso := bitsOf(link.Reply)
	for i := range wantMiso {
		if misoBits[i] != wantMiso[i] {
			t.Fatalf("miso bit %d: expected %v, got %v", i, wantMiso[i], misoBits[i])
		}
	}
}

// An external monitor of the bus sees select deasserted, then asserted for
// exactly 16 clock half-transitions (8 full cycles), then deasserted again.
func Test_select_window(t *testing.T) {
	var h []snap
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp, monitor(&h)(busConns))
	if err != nil {
		t.Fatal(err)
	}

	// a few idle ticks before and after the transfer
	for i := 0; i < 3; i++ {
		c.Step()
	}
	runTransfer(t, c, ctrl)
	for i := 0; i < 3; i++ {
		c.Step()
	}

	if !h[0].sel || h[0].clk {
		t.Fatalf("bus not idle at start: %+v", h[0])
	}
	last := h[len(h)-1]
	if !last.sel || last.clk {
		t.Fatalf("bus not idle at end: %+v", last)
	}
	if n := halfTransitions(h); n != 16 {
		t.Fatalf("expected 16 clock half-transitions, got %d", n)
	}
	// one contiguous select-low span
	spans := 0
	for i := 1; i < len(h); i++ {
		if !h[i].sel && h[i-1].sel {
			spans++
		}
	}
	if spans != 1 {
		t.Fatalf("expected 1 select-low span, got %d", spans)
	}
}

// Two consecutive transfers with no state leakage between runs.
func Test_consecutive_transfers(t *testing.T) {
	var h []snap
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp, monitor(&h)(busConns))
	if err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 2; run++ {
		startLen := len(h)
		got := runTransfer(t, c, ctrl)
		c.Step()
		if got != link.Reply {
			t.Fatalf("run %d: received 0x%02X, expected 0x%02X", run, got, link.Reply)
		}
		mosiBits := risingSamples(h[startLen:], func(s snap) bool { return s.mosi })
		if len(mosiBits) != 8 {
			t.Fatalf("run %d: expected 8 mosi bits, got %d", run, len(mosiBits))
		}
		want := bitsOf(link.Payload)
		for i := range want {
			if mosiBits[i] != want[i] {
				t.Fatalf("run %d: mosi bit %d: expected %v, got %v", run, i, want[i], mosiBits[i])
			}
		}
	}
}

// A transfer takes a fixed number of ticks: one activation tick plus 16
// clock phases, completing on the tick of the last sample.
func Test_transfer_length(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp)
	if err != nil {
		t.Fatal(err)
	}

	ctrl.BeginTransfer()
	for i := 0; i < 16; i++ {
		c.Step()
		if ctrl.Done() {
			t.Fatalf("completed early, after %d ticks", i+1)
		}
	}
	c.Step()
	if !ctrl.Done() {
		t.Fatal("expected completion on tick 17")
	}
}
