package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

// TestWorldStateAccountBasics verifies default values and round trips for balances, nonces, code, and storage.
func TestWorldStateAccountBasics(t *testing.T) {
	state := NewWorldState()
	address := common.HexToAddress("0x1234")

	// Untouched accounts read as empty.
	assert.False(t, state.Exists(address))
	assert.False(t, state.IsInitialized(address))
	assert.True(t, state.GetBalance(address).IsZero())
	assert.Zero(t, state.GetNonce(address))
	assert.Nil(t, state.GetCode(address))
	assert.Equal(t, common.Hash{}, state.GetState(address, common.HexToHash("0x01")))

	// Round trips
	state.SetBalance(address, uint256.NewInt(500))
	assert.EqualValues(t, 500, state.GetBalance(address).Uint64())
	assert.True(t, state.IsInitialized(address))

	state.AddBalance(address, uint256.NewInt(100))
	assert.EqualValues(t, 600, state.GetBalance(address).Uint64())

	state.SubBalance(address, uint256.NewInt(50))
	assert.EqualValues(t, 550, state.GetBalance(address).Uint64())

	// Debits saturate at zero.
	state.SubBalance(address, uint256.NewInt(10000))
	assert.True(t, state.GetBalance(address).IsZero())

	state.SetNonce(address, 3)
	assert.EqualValues(t, 3, state.GetNonce(address))

	state.SetCode(address, []byte{0x60, 0x01})
	assert.Equal(t, []byte{0x60, 0x01}, state.GetCode(address))

	slot := common.HexToHash("0x01")
	value := common.HexToHash("0xff")
	state.SetState(address, slot, value)
	assert.Equal(t, value, state.GetState(address, slot))
}

// TestWorldStateIsInitialized verifies EIP-161 non-emptiness: balance, nonce, or code each initialize an account.
func TestWorldStateIsInitialized(t *testing.T) {
	state := NewWorldState()

	byBalance := common.HexToAddress("0x01aa")
	state.SetBalance(byBalance, uint256.NewInt(1))
	assert.True(t, state.IsInitialized(byBalance))

	byNonce := common.HexToAddress("0x02aa")
	state.SetNonce(byNonce, 1)
	assert.True(t, state.IsInitialized(byNonce))

	byCode := common.HexToAddress("0x03aa")
	state.SetCode(byCode, []byte{0x00})
	assert.True(t, state.IsInitialized(byCode))

	// An account touched with only empty values stays uninitialized.
	touched := common.HexToAddress("0x04aa")
	state.SetCode(touched, nil)
	assert.True(t, state.Exists(touched))
	assert.False(t, state.IsInitialized(touched))
}

// TestWorldStateCreateAccount verifies contract creation derives addresses from the creator nonce, increments the
// creator, and starts the new account at nonce one.
func TestWorldStateCreateAccount(t *testing.T) {
	state := NewWorldState()
	creator := common.HexToAddress("0xabcd")

	first := state.CreateAccount(creator)
	assert.Equal(t, crypto.CreateAddress(creator, 0), first)
	assert.EqualValues(t, 1, state.GetNonce(creator))
	assert.EqualValues(t, 1, state.GetNonce(first))
	assert.True(t, state.IsInitialized(first))

	// A second creation observes the incremented creator nonce.
	second := state.CreateAccount(creator)
	assert.Equal(t, crypto.CreateAddress(creator, 1), second)
	assert.EqualValues(t, 2, state.GetNonce(creator))
	assert.NotEqual(t, first, second)
}

// TestWorldStateCopyIsolation verifies copies share no mutable state with their source.
func TestWorldStateCopyIsolation(t *testing.T) {
	state := NewWorldState()
	address := common.HexToAddress("0x1234")
	slot := common.HexToHash("0x01")

	state.SetBalance(address, uint256.NewInt(100))
	state.SetState(address, slot, common.HexToHash("0xaa"))
	state.BlockContext().Time = 500

	copied := state.Copy()

	// Mutate the original and verify the copy is unaffected.
	state.SetBalance(address, uint256.NewInt(999))
	state.SetState(address, slot, common.HexToHash("0xbb"))
	state.BlockContext().Time = 1000
	state.BlockContext().Number.SetInt64(42)

	assert.EqualValues(t, 100, copied.GetBalance(address).Uint64())
	assert.Equal(t, common.HexToHash("0xaa"), copied.GetState(address, slot))
	assert.EqualValues(t, 500, copied.BlockContext().Time)
	assert.EqualValues(t, 1, copied.BlockContext().Number.Int64())
}
