// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rpi bit-bangs the same mode-0 exchange on real Raspberry Pi GPIO
// pins. It is the physical counterpart of the spisim/link simulation: same
// wire roles, same MSB-first framing, clock idle low, data driven before
// each rising edge and sampled on it.
package rpi

import (
	"time"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/db47h/spisim/config"
)

// A Driver owns the four GPIO pins of one bit-banged bus.
type Driver struct {
	sel    rpio.Pin
	clk    rpio.Pin
	mosi   rpio.Pin
	miso   rpio.Pin
	settle time.Duration
}

// Validate checks a GPIO pin mapping without touching the hardware.
func Validate(g config.GPIO) error {
	pins := map[string]int{
		"SelectPin": g.SelectPin,
		"ClockPin":  g.ClockPin,
		"MOSIPin":   g.MOSIPin,
		"MISOPin":   g.MISOPin,
	}
	seen := make(map[int]string, len(pins))
	for name, p := range pins {
		// BCM numbering on the 40 pin header
		if p < 0 || p > 27 {
			return errors.Errorf("%s: GPIO %d out of range", name, p)
		}
		if prev, ok := seen[p]; ok {
			return errors.Errorf("%s and %s both mapped to GPIO %d", prev, name, p)
		}
		seen[p] = name
	}
	return nil
}

// Open memory-maps the GPIO registers and configures the pins: select,
// clock and mosi as outputs at their idle levels, miso as an input with a
// pull-down. Callers must Close the driver when done.
func Open(g config.GPIO) (*Driver, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "failed to open rpio")
	}
	d := &Driver{
		sel:    rpio.Pin(g.SelectPin),
		clk:    rpio.Pin(g.ClockPin),
		mosi:   rpio.Pin(g.MOSIPin),
		miso:   rpio.Pin(g.MISOPin),
		settle: g.SettleDelay(),
	}
	d.sel.Output()
	d.clk.Output()
	d.mosi.Output()
	d.miso.Input()
	d.miso.PullDown()
	d.sel.High() // select idles deasserted (active low)
	d.clk.Low()
	d.mosi.Low()
	return d, nil
}

// Close releases the GPIO mapping, leaving the bus idle.
func (d *Driver) Close() error {
	d.sel.High()
	d.clk.Low()
	d.mosi.Low()
	return errors.Wrap(rpio.Close(), "failed to close rpio")
}

// Exchange shifts one byte out on mosi and returns the byte read back from
// miso, MSB first: assert select, then for each bit drive mosi, raise the
// clock, sample miso on the rising edge and drop the clock again; deassert
// select once all 8 bits have moved.
func (d *Driver) Exchange(w byte) byte {
	var r byte
	d.sel.Low()
	d.pause()
	for i := 0; i < 8; i++ {
		if w&0x80 != 0 {
			d.mosi.High()
		} else {
			d.mosi.Low()
		}
		w <<= 1
		d.pause()
		d.clk.High()
		r <<= 1
		if d.miso.Read() == rpio.High {
			r |= 1
		}
		d.pause()
		d.clk.Low()
		d.pause()
	}
	d.sel.High()
	d.mosi.Low()
	d.pause()
	return r
}

func (d *Driver) pause() {
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
}
