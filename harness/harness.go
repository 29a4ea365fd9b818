// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package harness drives transfers through a circuit and validates their
// results. The core state machines never fail: non-termination and data
// mismatches exist only at this level, as caller-observed conditions.
package harness

import (
	"github.com/pkg/errors"

	hw "github.com/db47h/spisim"
	"github.com/db47h/spisim/link"
)

// DefaultBudget is a comfortable per-transfer tick budget: a clean exchange
// needs 17 ticks.
const DefaultBudget = 64

// RunTransfer triggers one transfer and steps the circuit until the
// controller reports completion, for at most budget ticks. It returns the
// received byte, or an error if the transfer did not complete in time (a
// stuck bus never fails on its own; running out of ticks is the only way
// non-termination surfaces).
func RunTransfer(c *hw.Circuit, ctrl *link.Controller, budget int) (byte, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	ctrl.BeginTransfer()
	for i := 0; i < budget; i++ {
		c.Step()
		if ctrl.Done() {
			return ctrl.ReceivedByte(), nil
		}
	}
	return 0, errors.Errorf("transfer did not complete within %d ticks", budget)
}

// Verify runs one transfer and compares the received byte against want.
func Verify(c *hw.Circuit, ctrl *link.Controller, want byte, budget int) error {
	got, err := RunTransfer(c, ctrl, budget)
	if err != nil {
		return err
	}
	if got != want {
		return errors.Errorf("received 0x%02X, expected 0x%02X", got, want)
	}
	return nil
}

// VerifyN runs n consecutive transfers, each expected to yield want.
func VerifyN(c *hw.Circuit, ctrl *link.Controller, want byte, budget, n int) error {
	for i := 0; i < n; i++ {
		if err := Verify(c, ctrl, want, budget); err != nil {
			return errors.Wrapf(err, "transfer %d of %d", i+1, n)
		}
	}
	return nil
}
