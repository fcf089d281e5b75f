package chain

import (
	"math/big"
	"path/filepath"

	"github.com/crytic/cheatvm/chain/config"
	"github.com/crytic/cheatvm/events"
	"github.com/crytic/cheatvm/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// CallOutcome describes the way a cheat code dispatch concluded.
type CallOutcome uint8

const (
	// CallOutcomeSucceeded indicates the cheat executed and returned ABI-encoded output.
	CallOutcomeSucceeded CallOutcome = iota

	// CallOutcomeReverted indicates the cheat failed; the return data carries an ABI-encoded revert reason.
	CallOutcomeReverted

	// CallOutcomeDiscarded indicates the cheat requested the current test case be discarded without marking it
	// failed (the assume cheat code).
	CallOutcomeDiscarded
)

// CheatCodeResult describes the result of dispatching a single call to a cheat code contract.
type CheatCodeResult struct {
	// Outcome describes how the dispatch concluded.
	Outcome CallOutcome

	// ReturnData holds the ABI-encoded output on success, or the revert payload on revert.
	ReturnData []byte

	// Err holds the sentinel error associated with a revert or discard, nil on success.
	Err error
}

// TestChain represents a simulated EVM state environment hosting the cheat code engine. It owns the world state
// mutated by cheat codes, the snapshot stack, the call recorder, and the dispatch table of cheat code contracts.
// It strips away consensus and block production to allow for specialized testing closer to the EVM.
type TestChain struct {
	// state represents the current world state. It tracks accounts, balances, code, storage, and the block
	// context, and is the subject of state changes when executing cheat codes.
	state *WorldState

	// snapshots maintains the stack of world state checkpoints managed by the snapshot/revertTo cheat codes.
	snapshots *snapshotStack

	// recorder captures outgoing calls of executing contracts while armed by the recordCalls cheat code.
	recorder *callRecorder

	// tracer tracks call frames surrounding cheat code invocations.
	tracer *cheatCodeTracer

	// cheatCodeContracts maps the reserved addresses to the cheat code contracts installed at them.
	cheatCodeContracts map[common.Address]*CheatCodeContract

	// testChainConfig represents the configuration used by this TestChain.
	testChainConfig *config.TestChainConfig

	// hostBridge is the handle through which host-facing cheat codes reach the operating system.
	hostBridge HostBridge

	// logger describes the TestChain's log object.
	logger *logging.Logger

	// CheatCodeCallEvents publishes an event for every cheat code dispatch that concludes.
	CheatCodeCallEvents events.EventEmitter[CheatCodeCallEvent]

	// SnapshotRevertedEvents publishes an event whenever a revertTo cheat restores a snapshot.
	SnapshotRevertedEvents events.EventEmitter[SnapshotRevertedEvent]
}

// NewTestChain creates a TestChain with the provided configuration and host bridge. A nil configuration uses
// defaults; a nil host bridge uses the real operating system.
// Returns the chain, or an error if one occurred during cheat code contract construction.
func NewTestChain(testChainConfig *config.TestChainConfig, hostBridge HostBridge) (*TestChain, error) {
	if testChainConfig == nil {
		var err error
		testChainConfig, err = config.DefaultTestChainConfig()
		if err != nil {
			return nil, err
		}
	}
	if hostBridge == nil {
		hostBridge = NewSystemHostBridge()
	}

	// Create our tracer, then the chain it will be bound to.
	tracer := newCheatCodeTracer()
	chain := &TestChain{
		state:              NewWorldState(),
		snapshots:          newSnapshotStack(),
		recorder:           newCallRecorder(),
		tracer:             tracer,
		cheatCodeContracts: make(map[common.Address]*CheatCodeContract),
		testChainConfig:    testChainConfig,
		hostBridge:         hostBridge,
		logger:             logging.GlobalLogger.NewSubLogger("module", "chain"),
	}
	tracer.bindToChain(chain)

	// Obtain our cheat code contracts and install them at their reserved addresses.
	if testChainConfig.CheatCodeConfig.CheatCodesEnabled {
		contracts, err := getCheatCodeProviders(tracer)
		if err != nil {
			return nil, err
		}
		for _, contract := range contracts {
			chain.cheatCodeContracts[contract.Address()] = contract
		}
	}
	return chain, nil
}

// State returns the current world state of the chain.
func (t *TestChain) State() *WorldState {
	return t.state
}

// BlockContext returns the block environment of the current world state.
func (t *TestChain) BlockContext() *BlockContext {
	return t.state.BlockContext()
}

// CheatCodeContracts returns the cheat code contracts installed on the chain, keyed by their reserved addresses.
func (t *TestChain) CheatCodeContracts() map[common.Address]*CheatCodeContract {
	return t.cheatCodeContracts
}

// HostBridge returns the host bridge the chain was constructed with.
func (t *TestChain) HostBridge() HostBridge {
	return t.hostBridge
}

// IsCheatCodeContract indicates whether the given address hosts a cheat code contract.
func (t *TestChain) IsCheatCodeContract(address common.Address) bool {
	_, ok := t.cheatCodeContracts[address]
	return ok
}

// DispatchCheatCodeCall routes a call targeting a reserved cheat code address to the contract installed there. The
// first four bytes of input select the cheat method; remaining bytes are ABI-decoded per its schema. The dispatch
// itself holds no state: failures surface as reverts whose Error(string) payload carries the documented message.
// Returns the dispatch result, or an error if the target address does not host a cheat code contract.
func (t *TestChain) DispatchCheatCodeCall(from common.Address, target common.Address, input []byte) (*CheatCodeResult, error) {
	contract, ok := t.cheatCodeContracts[target]
	if !ok {
		return nil, errors.Errorf("address %v is not a cheat code contract", target)
	}

	// The cheat call occupies its own call frame, so handlers can inspect their caller's frame.
	t.tracer.OnEnter(from, target, input, big.NewInt(0), false)
	returnData, err := contract.Run(input)
	t.tracer.OnExit(err)

	result := &CheatCodeResult{
		Outcome:    CallOutcomeSucceeded,
		ReturnData: returnData,
		Err:        err,
	}
	if errors.Is(err, ErrTestCaseDiscarded) {
		result.Outcome = CallOutcomeDiscarded
	} else if err != nil {
		result.Outcome = CallOutcomeReverted
	}

	if eventErr := t.CheatCodeCallEvents.Publish(CheatCodeCallEvent{
		Chain:    t,
		Contract: contract,
		Outcome:  result.Outcome,
	}); eventErr != nil {
		return nil, eventErr
	}
	return result, nil
}

// EnterCallFrame notifies the chain that the embedding interpreter entered a new message call frame. The call is
// observed by the call recorder (if armed) before the value transfer applies, then the transfer is performed.
func (t *TestChain) EnterCallFrame(from common.Address, to common.Address, value *big.Int, data []byte) {
	t.tracer.OnEnter(from, to, data, value, false)

	if value != nil && value.Sign() > 0 {
		amount, overflow := uint256.FromBig(value)
		if !overflow {
			t.state.SubBalance(from, amount)
			t.state.AddBalance(to, amount)
		}
	}
}

// ExitCallFrame notifies the chain that the embedding interpreter exited the current call frame. A non-nil error
// indicates the frame reverted.
func (t *TestChain) ExitCallFrame(err error) {
	t.tracer.OnExit(err)
}

// EnterCreateFrame notifies the chain that the embedding interpreter began a contract creation on behalf of the
// given creator. The new account is derived and installed through the same account-creation path nonce queries
// observe, so the creator's nonce increments immediately.
// Returns the address of the account under construction.
func (t *TestChain) EnterCreateFrame(creator common.Address, initCode []byte) common.Address {
	address := t.state.CreateAccount(creator)
	t.tracer.OnEnter(creator, address, initCode, big.NewInt(0), true)
	return address
}

// ExitCreateFrame notifies the chain that the contract creation occupying the current frame concluded, deploying
// the provided runtime code to the constructed account. A nil runtime code indicates the constructor reverted.
func (t *TestChain) ExitCreateFrame(runtimeCode []byte) {
	currentFrame := t.tracer.CurrentCallFrame()
	if currentFrame != nil && currentFrame.IsContractCreation && runtimeCode != nil {
		t.state.SetCode(currentFrame.Target, runtimeCode)
	}
	t.tracer.OnExit(nil)
}

// DeployContract creates a new contract account for the given creator with the provided runtime code, entering and
// exiting the creation frame in one step. It is a convenience for embedders whose constructors perform no calls.
// Returns the address of the deployed contract.
func (t *TestChain) DeployContract(creator common.Address, runtimeCode []byte) common.Address {
	address := t.EnterCreateFrame(creator, runtimeCode)
	t.ExitCreateFrame(runtimeCode)
	return address
}

// resolvePath resolves a file path used by file-reading cheat codes against the configured chain root directory.
func (t *TestChain) resolvePath(path string) string {
	if filepath.IsAbs(path) || t.testChainConfig.Root == "" {
		return path
	}
	return filepath.Join(t.testChainConfig.Root, path)
}
