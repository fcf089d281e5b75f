package chain

import (
	"math/big"

	"github.com/crytic/cheatvm/chain/types"
	"github.com/ethereum/go-ethereum/common"
)

// cheatCodeTracer tracks the call frames of the EVM execution surrounding cheat code invocations. The embedding
// interpreter drives it through OnEnter/OnExit; the TestChain uses it to observe outgoing calls for the call
// recorder and to give cheat code handlers access to their caller's frame.
type cheatCodeTracer struct {
	// chain refers to the TestChain which this tracer is bound to. This is nil when the tracer is first created,
	// but is set by the TestChain which created it, after it is added.
	chain *TestChain

	// callDepth refers to the current call depth during tracing.
	callDepth uint64

	// callFrames represents per-call-frame data being captured by the tracer.
	callFrames []*cheatCodeTracerCallFrame
}

// cheatCodeTracerCallFrame represents per-call-frame data traced by a cheatCodeTracer.
type cheatCodeTracerCallFrame struct {
	// onNextFrameEnterHooks describes hooks which will be executed the next time this call frame executes a call,
	// creating "the next call frame". The hooks are executed as a queue on entry.
	onNextFrameEnterHooks types.GenericHookFuncs

	// onFrameExitRestoreHooks describes hooks which are executed when this call frame is exited.
	// The hooks are executed as a stack on exit (to support revert operations).
	onFrameExitRestoreHooks types.GenericHookFuncs

	// onTopFrameExitRestoreHooks describes hooks which are executed when the top call frame is exiting. Hooks
	// registered in nested frames propagate upward as frames exit.
	// The hooks are executed as a stack (to support revert operations).
	onTopFrameExitRestoreHooks types.GenericHookFuncs

	// Sender describes the account which initiated this frame.
	Sender common.Address

	// Target describes the account this frame executes against. For contract creations this is the address of the
	// newly created account.
	Target common.Address

	// Value describes the call value attached to this frame.
	Value *big.Int

	// InputData describes the call input data of this frame.
	InputData []byte

	// IsContractCreation indicates whether this frame executes a contract constructor.
	IsContractCreation bool
}

// newCheatCodeTracer creates a cheatCodeTracer and returns it.
func newCheatCodeTracer() *cheatCodeTracer {
	return &cheatCodeTracer{}
}

// bindToChain is called by the TestChain which created the tracer to set its reference.
// Note: This is done because the tracer and chain reference each other, which prevents the chain being set in the
// tracer on initialization.
func (t *cheatCodeTracer) bindToChain(chain *TestChain) {
	t.chain = chain
}

// PreviousCallFrame returns the previous call frame of the current execution, or nil if there is no previous.
func (t *cheatCodeTracer) PreviousCallFrame() *cheatCodeTracerCallFrame {
	if len(t.callFrames) < 2 {
		return nil
	}
	return t.callFrames[t.callDepth-1]
}

// CurrentCallFrame returns the current call frame of the execution, or nil if there is none.
func (t *cheatCodeTracer) CurrentCallFrame() *cheatCodeTracerCallFrame {
	if len(t.callFrames) == 0 {
		return nil
	}
	return t.callFrames[t.callDepth]
}

// OnEnter initializes tracing for the top of a new call frame. The embedding interpreter must invoke it for every
// call or contract creation before the callee executes, so that recorded calls observe the callee account's state
// strictly before this call's effects apply.
func (t *cheatCodeTracer) OnEnter(from common.Address, to common.Address, input []byte, value *big.Int, isContractCreation bool) {
	if value == nil {
		value = big.NewInt(0)
	}
	callFrameData := &cheatCodeTracerCallFrame{
		Sender:             from,
		Target:             to,
		Value:              value,
		InputData:          input,
		IsContractCreation: isContractCreation,
	}

	isTopLevelFrame := len(t.callFrames) == 0
	if !isTopLevelFrame {
		// Record the outgoing call before any of its nested effects dispatch. Contract creations and calls
		// targeting cheat code contracts are not protocol-level calls of the executing contract, so they are not
		// logged.
		if !isContractCreation {
			if _, isCheatCodeCall := t.chain.cheatCodeContracts[to]; !isCheatCodeCall {
				t.chain.recorder.RecordCall(to, t.chain.state.IsInitialized(to), value, input)
			}
		}

		// Increase our call depth now that we're entering a new call frame.
		t.callDepth++
	}

	// Append our new call frame
	t.callFrames = append(t.callFrames, callFrameData)

	// Execute the parent frame's "next frame enter" hooks now that the new frame exists.
	if !isTopLevelFrame {
		t.callFrames[t.callDepth-1].onNextFrameEnterHooks.Execute(true, true)
	}
}

// OnExit finalizes tracing for the exiting call frame. An error indicates the frame reverted, in which case
// state-restoring hooks registered for outer scopes still run when their frames exit.
func (t *cheatCodeTracer) OnExit(err error) {
	exitingCallFrame := t.callFrames[t.callDepth]

	// Execute the exiting frame's own exit hooks in reverse registration order.
	exitingCallFrame.onFrameExitRestoreHooks.Execute(false, true)

	isTopLevelFrame := t.callDepth == 0
	if isTopLevelFrame {
		exitingCallFrame.onTopFrameExitRestoreHooks.Execute(false, true)
	} else {
		// Propagate top-frame exit hooks up to the parent so they fire when the transaction concludes.
		parentCallFrame := t.callFrames[t.callDepth-1]
		parentCallFrame.onTopFrameExitRestoreHooks = append(parentCallFrame.onTopFrameExitRestoreHooks, exitingCallFrame.onTopFrameExitRestoreHooks...)
	}

	// We're exiting the current frame, so remove our frame data.
	t.callFrames = t.callFrames[:len(t.callFrames)-1]
	if !isTopLevelFrame {
		t.callDepth--
	}
}
