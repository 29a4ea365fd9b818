// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads run configuration for the spisim command from a YAML
// file. Everything has a sensible default: an empty file describes the
// canonical 0xA5/0x3C exchange.
package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/db47h/spisim/harness"
	"github.com/db47h/spisim/link"
	"github.com/db47h/spisim/trace"
)

// A Scenario is one named exchange to run: the payload sent, the reply the
// responder is programmed with, and the value the harness expects back.
type Scenario struct {
	Payload byte `yaml:"Payload"`
	Reply   byte `yaml:"Reply"`
	Expect  byte `yaml:"Expect"`
}

// GPIO maps the bus wires to physical pin numbers for the hardware backend.
type GPIO struct {
	Enabled           bool `yaml:"Enabled"`
	SelectPin         int  `yaml:"SelectPin"`
	ClockPin          int  `yaml:"ClockPin"`
	MOSIPin           int  `yaml:"MOSIPin"`
	MISOPin           int  `yaml:"MISOPin"`
	SettleDelayMicros int  `yaml:"SettleDelayMicros"`
}

// SettleDelay returns the per-edge settle delay for the hardware backend.
func (g GPIO) SettleDelay() time.Duration {
	return time.Duration(g.SettleDelayMicros) * time.Microsecond
}

// Config is the top-level run configuration.
type Config struct {
	// Transfers is the number of consecutive exchanges to run.
	Transfers int `yaml:"Transfers"`
	// TickBudget bounds each transfer; exceeding it is a timeout.
	TickBudget int `yaml:"TickBudget"`
	// TraceDepth is the recorder history size in ticks.
	TraceDepth int `yaml:"TraceDepth"`
	// TickDelayMillis slows the simulation down to human rate in TUI mode.
	TickDelayMillis int `yaml:"TickDelayMillis"`

	// Scenarios maps scenario names to exchanges. The "default" scenario
	// always exists.
	Scenarios map[string]Scenario `yaml:"Scenarios"`

	GPIO GPIO `yaml:"GPIO"`
}

// TickDelay returns the wall-clock delay between ticks in TUI mode.
func (c *Config) TickDelay() time.Duration {
	return time.Duration(c.TickDelayMillis) * time.Millisecond
}

// DefaultScenario is the name of the built-in canonical exchange.
const DefaultScenario = "default"

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Transfers:       1,
		TickBudget:      harness.DefaultBudget,
		TraceDepth:      trace.DefaultDepth,
		TickDelayMillis: 100,
		Scenarios: map[string]Scenario{
			DefaultScenario: {Payload: link.Payload, Reply: link.Reply, Expect: link.Reply},
		},
	}
}

// Load reads the configuration from the YAML file at path, filling any
// omitted field from Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open config file")
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "cannot decode config file %s", path)
	}
	if cfg.Transfers <= 0 {
		cfg.Transfers = 1
	}
	if cfg.TickBudget <= 0 {
		cfg.TickBudget = harness.DefaultBudget
	}
	if cfg.TraceDepth <= 0 {
		cfg.TraceDepth = trace.DefaultDepth
	}
	if cfg.Scenarios == nil {
		cfg.Scenarios = Default().Scenarios
	}
	if _, ok := cfg.Scenarios[DefaultScenario]; !ok {
		cfg.Scenarios[DefaultScenario] = Default().Scenarios[DefaultScenario]
	}
	return cfg, nil
}
