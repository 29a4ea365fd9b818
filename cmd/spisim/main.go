// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command spisim runs the serial-link simulation from the command line:
// one or more transfers through the simulated bus, a live TUI, or the
// bit-banged GPIO backend on a Raspberry Pi.
//
//	spisim [-config config.yml] [-scenario name] [-n count] [-tui|-hw] [-v]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/db47h/spisim/config"
	"github.com/db47h/spisim/harness"
	"github.com/db47h/spisim/link"
	"github.com/db47h/spisim/rpi"
	"github.com/db47h/spisim/trace"
	"github.com/db47h/spisim/tui"
)

const recorderConns = "ss=ss, sck=sck, mosi=mosi, miso=miso"

func main() {
	var (
		cfgPath  = flag.String("config", "", "configuration file (YAML)")
		scenario = flag.String("scenario", config.DefaultScenario, "scenario to run")
		count    = flag.Int("n", 0, "number of transfers (overrides config)")
		useTUI   = flag.Bool("tui", false, "live waveform viewer")
		useHW    = flag.Bool("hw", false, "bit-bang real GPIO pins instead of simulating")
		list     = flag.Bool("list", false, "list scenarios and exit")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Error("cannot load configuration", "error", err)
			os.Exit(2)
		}
	}
	if *count > 0 {
		cfg.Transfers = *count
	}

	if *list {
		names := maps.Keys(cfg.Scenarios)
		slices.Sort(names)
		for _, n := range names {
			sc := cfg.Scenarios[n]
			fmt.Printf("%-16s payload 0x%02X reply 0x%02X expect 0x%02X\n", n, sc.Payload, sc.Reply, sc.Expect)
		}
		return
	}

	sc, ok := cfg.Scenarios[*scenario]
	if !ok {
		log.Error("unknown scenario", "name", *scenario)
		os.Exit(2)
	}
	log.Debug("scenario", "name", *scenario,
		"payload", fmt.Sprintf("0x%02X", sc.Payload),
		"expect", fmt.Sprintf("0x%02X", sc.Expect))

	if *useHW {
		os.Exit(runHardware(log, cfg, sc))
	}
	os.Exit(runSimulation(log, cfg, sc, *useTUI))
}

func runSimulation(log *slog.Logger, cfg *config.Config, sc config.Scenario, useTUI bool) int {
	ctrl := link.NewController(sc.Payload)
	resp := link.NewResponder(sc.Reply)
	rec := trace.NewRecorder(cfg.TraceDepth)
	c, err := link.Connect(ctrl, resp, rec.Part(recorderConns))
	if err != nil {
		log.Error("cannot build circuit", "error", err)
		return 2
	}

	if useTUI {
		if err := tui.New(c, ctrl, rec, cfg.TickDelay()).Run(); err != nil {
			log.Error("viewer failed", "error", err)
			return 1
		}
		return 0
	}

	for i := 0; i < cfg.Transfers; i++ {
		got, err := harness.RunTransfer(c, ctrl, cfg.TickBudget)
		if err != nil {
			log.Error("transfer failed", "transfer", i+1, "error", err)
			return 1
		}
		log.Debug("transfer complete", "transfer", i+1, "received", fmt.Sprintf("0x%02X", got))
		if got != sc.Expect {
			log.Error("data mismatch",
				"transfer", i+1,
				"received", fmt.Sprintf("0x%02X", got),
				"expected", fmt.Sprintf("0x%02X", sc.Expect))
			fmt.Print(rec.Waveform())
			return 1
		}
	}
	fmt.Print(rec.Waveform())
	log.Info("all transfers verified", "transfers", cfg.Transfers, "ticks", c.Ticks())
	return 0
}

func runHardware(log *slog.Logger, cfg *config.Config, sc config.Scenario) int {
	if !cfg.GPIO.Enabled {
		log.Error("GPIO disabled in configuration")
		return 2
	}
	d, err := rpi.Open(cfg.GPIO)
	if err != nil {
		log.Error("cannot open GPIO", "error", err)
		return 2
	}
	defer d.Close()

	for i := 0; i < cfg.Transfers; i++ {
		got := d.Exchange(sc.Payload)
		if got != sc.Expect {
			log.Error("data mismatch",
				"transfer", i+1,
				"received", fmt.Sprintf("0x%02X", got),
				"expected", fmt.Sprintf("0x%02X", sc.Expect))
			return 1
		}
		log.Debug("transfer complete", "transfer", i+1, "received", fmt.Sprintf("0x%02X", got))
	}
	log.Info("all transfers verified", "transfers", cfg.Transfers)
	return 0
}
