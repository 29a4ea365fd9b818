// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tui renders the bus live in a terminal. The simulation is stepped
// at a human-observable rate; the core keeps ticking one state transition
// at a time, only the wall clock between ticks is scaled.
package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	hw "github.com/db47h/spisim"
	"github.com/db47h/spisim/link"
	"github.com/db47h/spisim/trace"
)

// A Viewer owns the terminal application and the circuit it animates.
type Viewer struct {
	app    *tview.Application
	wave   *tview.TextView
	status *tview.TextView

	c     *hw.Circuit
	ctrl  *link.Controller
	rec   *trace.Recorder
	delay time.Duration

	trigger chan struct{}
	stop    chan struct{}

	transfers int
	lastByte  byte
	haveByte  bool
}

// New returns a viewer stepping circuit c every delay, rendering the
// recorder's history. The controller handle is used to trigger transfers
// from the keyboard.
func New(c *hw.Circuit, ctrl *link.Controller, rec *trace.Recorder, delay time.Duration) *Viewer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Viewer{
		app:     tview.NewApplication(),
		wave:    tview.NewTextView().SetDynamicColors(true),
		status:  tview.NewTextView().SetDynamicColors(true),
		c:       c,
		ctrl:    ctrl,
		rec:     rec,
		delay:   delay,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// Run displays the viewer and blocks until the user quits.
func (v *Viewer) Run() error {
	v.wave.SetBorder(true).SetTitle(" bus ")
	v.status.SetBorder(true).SetTitle(" status ")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.wave, 0, 1, false).
		AddItem(v.status, 4, 0, false)

	v.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
			close(v.stop)
			v.app.Stop()
			return nil
		case ev.Rune() == ' ':
			// do not call into the controller here: the simulation is
			// lockstep and owned by the ticker goroutine
			select {
			case v.trigger <- struct{}{}:
			default:
			}
			return nil
		}
		return ev
	})

	go v.loop()

	return v.app.SetRoot(flex, true).Run()
}

func (v *Viewer) loop() {
	tick := time.NewTicker(v.delay)
	defer tick.Stop()
	for {
		select {
		case <-v.stop:
			return
		case <-tick.C:
			select {
			case <-v.trigger:
				v.ctrl.BeginTransfer()
			default:
			}
			v.c.Step()
			if v.ctrl.Done() {
				v.transfers++
				v.lastByte = v.ctrl.ReceivedByte()
				v.haveByte = true
			}
			v.redraw()
		}
	}
}

func (v *Viewer) redraw() {
	wave := v.rec.Waveform()
	status := fmt.Sprintf("tick [yellow]%d[-]  transfers [yellow]%d[-]", v.c.Ticks(), v.transfers)
	if v.haveByte {
		status += fmt.Sprintf("  last byte [yellow]0x%02X[-]", v.lastByte)
	}
	status += "\n[blue]space[-] transfer  [blue]q[-] quit"
	v.app.QueueUpdateDraw(func() {
		v.wave.SetText(wave)
		v.status.SetText(status)
	})
}
