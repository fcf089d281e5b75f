package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshotStackRevert verifies snapshot captures are isolated from later mutation and that reverting drops
// newer entries while keeping the target valid.
func TestSnapshotStackRevert(t *testing.T) {
	stack := newSnapshotStack()
	state := NewWorldState()
	address := common.HexToAddress("0x1234")

	state.SetBalance(address, uint256.NewInt(100))
	firstID := stack.Snapshot(state)
	assert.EqualValues(t, 0, firstID)

	state.SetBalance(address, uint256.NewInt(200))
	secondID := stack.Snapshot(state)
	assert.EqualValues(t, 1, secondID)

	// Reverting to the second snapshot restores the balance as of its capture.
	restored, ok := stack.RevertTo(secondID)
	require.True(t, ok)
	assert.EqualValues(t, 200, restored.GetBalance(address).Uint64())

	// Reverting to the first invalidates the second.
	restored, ok = stack.RevertTo(firstID)
	require.True(t, ok)
	assert.EqualValues(t, 100, restored.GetBalance(address).Uint64())

	_, ok = stack.RevertTo(secondID)
	assert.False(t, ok)

	// The target itself stays revertable.
	_, ok = stack.RevertTo(firstID)
	assert.True(t, ok)

	// Unknown identifiers fail.
	_, ok = stack.RevertTo(99)
	assert.False(t, ok)

	// Identifiers keep increasing and are never reused.
	thirdID := stack.Snapshot(state)
	assert.EqualValues(t, 2, thirdID)
}

// TestSnapshotStackReturnsCopies verifies each revert hands back an independent state copy, so mutating a restored
// state cannot corrupt the retained capture.
func TestSnapshotStackReturnsCopies(t *testing.T) {
	stack := newSnapshotStack()
	state := NewWorldState()
	address := common.HexToAddress("0x1234")

	state.SetBalance(address, uint256.NewInt(100))
	id := stack.Snapshot(state)

	// The capture is isolated from the live state.
	state.SetBalance(address, uint256.NewInt(500))

	restored, ok := stack.RevertTo(id)
	require.True(t, ok)
	assert.EqualValues(t, 100, restored.GetBalance(address).Uint64())

	// Mutating the restored state does not affect a later revert to the same id.
	restored.SetBalance(address, uint256.NewInt(999))
	restoredAgain, ok := stack.RevertTo(id)
	require.True(t, ok)
	assert.EqualValues(t, 100, restoredAgain.GetBalance(address).Uint64())
}
