package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/spisim/harness"
	"github.com/db47h/spisim/link"
)

func Test_run_transfer(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp)
	require.NoError(t, err)

	got, err := harness.RunTransfer(c, ctrl, 0)
	require.NoError(t, err)
	assert.Equal(t, link.Reply, got)
}

func Test_timeout(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp)
	require.NoError(t, err)

	// a clean exchange needs 17 ticks; 10 is not enough
	_, err = harness.RunTransfer(c, ctrl, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not complete")
}

func Test_verify(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp)
	require.NoError(t, err)

	require.NoError(t, harness.Verify(c, ctrl, link.Reply, 0))
	err = harness.Verify(c, ctrl, 0x55, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 0x55")
}

func Test_verify_n(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(link.Reply)
	c, err := link.Connect(ctrl, resp)
	require.NoError(t, err)

	require.NoError(t, harness.VerifyN(c, ctrl, link.Reply, 0, 5))
}

// A responder programmed with a different reply is a data mismatch detected
// here, never inside the core.
func Test_verify_mismatch(t *testing.T) {
	ctrl := link.NewController(link.Payload)
	resp := link.NewResponder(0xF0)
	c, err := link.Connect(ctrl, resp)
	require.NoError(t, err)

	err = harness.Verify(c, ctrl, link.Reply, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received 0xF0")
}
