package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RecordedCall describes a single outgoing call observed while call recording was armed.
type RecordedCall struct {
	// Account describes the call target.
	Account common.Address

	// Initialized indicates whether the target account was non-empty (had balance, code, or a non-zero nonce)
	// strictly before this call executed. A contract's self-call during construction reports true because the
	// account receives its nonce before the constructor runs.
	Initialized bool

	// Value describes the call value in wei.
	Value *big.Int

	// Data describes the call input data.
	Data []byte
}

// callRecorder captures the outgoing calls of executing contracts while armed. It exclusively owns its log; entries
// are only appended through RecordCall and only removed by Drain.
type callRecorder struct {
	// armed indicates whether calls are currently being recorded.
	armed bool

	// entries holds the recorded calls in execution order.
	entries []RecordedCall
}

// newCallRecorder creates a disarmed call recorder.
func newCallRecorder() *callRecorder {
	return &callRecorder{}
}

// Arm enables call recording. Arming an already-armed recorder is a no-op and does not clear the existing log.
func (r *callRecorder) Arm() {
	r.armed = true
}

// RecordCall appends a call to the log if recording is armed. The entry is appended before the call dispatches any
// nested effects, so the log reflects execution order. Input data is copied so later buffer reuse by the
// interpreter cannot corrupt the log.
func (r *callRecorder) RecordCall(account common.Address, initialized bool, value *big.Int, data []byte) {
	if !r.armed {
		return
	}
	if value == nil {
		value = big.NewInt(0)
	}
	r.entries = append(r.entries, RecordedCall{
		Account:     account,
		Initialized: initialized,
		Value:       new(big.Int).Set(value),
		Data:        append([]byte(nil), data...),
	})
}

// Drain returns all recorded calls, clears the log, and disarms the recorder.
func (r *callRecorder) Drain() []RecordedCall {
	entries := r.entries
	r.entries = nil
	r.armed = false
	return entries
}
