package abiutils

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRevertReasonRoundTrip verifies packed Error(string) payloads unpack to the original message.
func TestRevertReasonRoundTrip(t *testing.T) {
	packed := PackRevertReason("some revert message")

	// The payload leads with the Error(string) selector 0x08c379a0.
	require.Greater(t, len(packed), 4)
	assert.Equal(t, []byte{0x08, 0xc3, 0x79, 0xa0}, packed[:4])

	reason := UnpackRevertReason(vm.ErrExecutionReverted, packed)
	require.NotNil(t, reason)
	assert.Equal(t, "some revert message", *reason)
}

// TestUnpackRevertReasonRejectsOtherPayloads verifies non-revert errors and foreign payloads yield no reason.
func TestUnpackRevertReasonRejectsOtherPayloads(t *testing.T) {
	packed := PackRevertReason("msg")

	// A non-revert error is not a revert reason carrier.
	assert.Nil(t, UnpackRevertReason(errors.New("other failure"), packed))

	// Return data without the Error(string) selector carries no reason.
	assert.Nil(t, UnpackRevertReason(vm.ErrExecutionReverted, []byte{0x01, 0x02, 0x03, 0x04, 0x05}))

	// Bare reverts have no reason either.
	assert.Nil(t, UnpackRevertReason(vm.ErrExecutionReverted, nil))
}
