package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/crytic/cheatvm/abiutils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
)

// ErrTestCaseDiscarded is the sentinel returned by a cheat code dispatch when the executing test case should be
// discarded rather than marked as failed (the assume cheat code). It is a third outcome alongside success and
// revert, not an execution failure.
var ErrTestCaseDiscarded = errors.New("test case discarded by cheat code")

// cheatCodeMethodHandler describes a function which handles a callback for a given contract method. It takes the
// cheatCodeTracer for execution context, as well as unpacked input values.
// Returns unpacked output values to be packed and returned, or raw return data to be returned as-is.
type cheatCodeMethodHandler func(tracer *cheatCodeTracer, args []any) ([]any, *cheatCodeRawReturnData)

// cheatCodeRawReturnData provides the return data and error to be returned by a cheat code method directly,
// bypassing output packing.
type cheatCodeRawReturnData struct {
	// ReturnData represents the raw return data bytes. For reverts this is the revert payload.
	ReturnData []byte

	// Err represents the error to return, if any. Reverts use vm.ErrExecutionReverted, discards use
	// ErrTestCaseDiscarded.
	Err error
}

// cheatCodeRevertData creates raw return data for a cheat code revert carrying the provided payload verbatim.
func cheatCodeRevertData(returnData []byte) *cheatCodeRawReturnData {
	return &cheatCodeRawReturnData{
		ReturnData: returnData,
		Err:        vm.ErrExecutionReverted,
	}
}

// cheatCodeRevertMessage creates raw return data for a cheat code revert whose payload follows the standard
// Solidity Error(string) revert reason convention, so callers can assert on the exact message text.
func cheatCodeRevertMessage(message string) *cheatCodeRawReturnData {
	return &cheatCodeRawReturnData{
		ReturnData: abiutils.PackRevertReason(message),
		Err:        vm.ErrExecutionReverted,
	}
}

// cheatCodeDiscardData creates raw return data signaling that the current test case should be discarded.
func cheatCodeDiscardData() *cheatCodeRawReturnData {
	return &cheatCodeRawReturnData{
		Err: ErrTestCaseDiscarded,
	}
}

// CheatCodeContract defines a struct which represents a pre-compiled contract with various methods that is meant to
// act as a contract at a reserved address. It never executes EVM bytecode; calls targeting its address are decoded
// and routed to registered method handlers.
type CheatCodeContract struct {
	// address defines the address the cheat code contract should be installed at.
	address common.Address

	// name describes the name of the cheat code contract, used in logs and errors.
	name string

	// tracer represents the cheat code tracer used to provide execution context.
	tracer *cheatCodeTracer

	// methodInfo describes a table of methodId (function selectors) to cheat code methods. This acts as a switch
	// table for different methods in the contract.
	methodInfo map[uint32]*cheatCodeMethod

	// methodsBySignature maps canonical method signatures (e.g. "toString(address)") to their method definitions,
	// used to pack call data for a given cheat without re-deriving selectors.
	methodsBySignature map[string]*cheatCodeMethod
}

// cheatCodeMethod defines the method information for a given CheatCodeContract.
type cheatCodeMethod struct {
	// method is the ABI method definition used to pack and unpack both input and output arguments.
	method abi.Method

	// handler represents the method handler to call with the unpacked input arguments.
	handler cheatCodeMethodHandler
}

// newCheatCodeContract returns a new CheatCodeContract which uses the attached cheatCodeTracer for execution
// context.
func newCheatCodeContract(tracer *cheatCodeTracer, address common.Address, name string) *CheatCodeContract {
	return &CheatCodeContract{
		address:            address,
		name:               name,
		tracer:             tracer,
		methodInfo:         make(map[uint32]*cheatCodeMethod),
		methodsBySignature: make(map[string]*cheatCodeMethod),
	}
}

// Address returns the address the cheat code contract is installed at.
func (p *CheatCodeContract) Address() common.Address {
	return p.address
}

// Name returns the name of the cheat code contract.
func (p *CheatCodeContract) Name() string {
	return p.name
}

// addMethod adds a new method to the pre-compiled contract.
func (p *CheatCodeContract) addMethod(name string, inputs abi.Arguments, outputs abi.Arguments, handler cheatCodeMethodHandler) {
	// Verify a method name was provided
	if name == "" {
		panic("could not add method to precompiled cheatcode contract, empty method name provided")
	}

	// Verify a method handler was provided
	if handler == nil {
		panic("could not add method to precompiled cheatcode contract, nil method handler provided")
	}

	// Set the method information in our method lookups
	method := abi.NewMethod(name, name, abi.Function, "external", false, false, inputs, outputs)
	methodId := binary.LittleEndian.Uint32(method.ID)
	methodData := &cheatCodeMethod{
		method:  method,
		handler: handler,
	}
	p.methodInfo[methodId] = methodData
	p.methodsBySignature[method.Sig] = methodData
}

// PackCallData packs call data for the cheat code method with the given canonical signature (e.g.
// "store(address,bytes32,bytes32)") and arguments. This is primarily a convenience for embedders and tests.
// Returns the selector-prefixed call data, or an error if the signature is unknown or packing fails.
func (p *CheatCodeContract) PackCallData(signature string, args ...any) ([]byte, error) {
	methodData, ok := p.methodsBySignature[signature]
	if !ok {
		return nil, errors.Errorf("cheat code contract %v has no method with signature %v", p.name, signature)
	}
	packedArgs, err := methodData.method.Inputs.Pack(args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return append(append([]byte(nil), methodData.method.ID...), packedArgs...), nil
}

// UnpackReturnData unpacks return data produced by the cheat code method with the given canonical signature.
// Returns the unpacked output values, or an error if the signature is unknown or unpacking fails.
func (p *CheatCodeContract) UnpackReturnData(signature string, returnData []byte) ([]any, error) {
	methodData, ok := p.methodsBySignature[signature]
	if !ok {
		return nil, errors.Errorf("cheat code contract %v has no method with signature %v", p.name, signature)
	}
	values, err := methodData.method.Outputs.Unpack(returnData)
	return values, errors.WithStack(err)
}

// Run executes the given pre-compile with the provided input data.
// Returns the output data from execution, or an error if one occurred. Reverts carry vm.ErrExecutionReverted along
// with an ABI-encoded Error(string) payload whose message text is part of the cheat's contract.
func (p *CheatCodeContract) Run(input []byte) ([]byte, error) {
	// Calling any method should require at least a function selector.
	if len(input) < 4 {
		revertData := cheatCodeRevertMessage(fmt.Sprintf("%v: call data is missing a function selector", p.name))
		return revertData.ReturnData, revertData.Err
	}

	// Obtain the method identifier as a uint32
	methodId := binary.LittleEndian.Uint32(input[:4])

	// Ensure we have a method definition that matches our selector.
	methodInfo, methodInfoExists := p.methodInfo[methodId]
	if !methodInfoExists {
		revertData := cheatCodeRevertMessage(fmt.Sprintf("%v: unknown cheat code selector 0x%x", p.name, input[:4]))
		return revertData.ReturnData, revertData.Err
	}

	// This call is targeting a valid method, unpack its arguments
	inputValues, err := methodInfo.method.Inputs.Unpack(input[4:])
	if err != nil {
		revertData := cheatCodeRevertMessage(fmt.Sprintf("%v: failed to decode arguments of %v: %v", p.name, methodInfo.method.Sig, err))
		return revertData.ReturnData, revertData.Err
	}

	// Call the registered method handler.
	outputValues, rawReturnData := methodInfo.handler(p.tracer, inputValues)

	// If we have raw return data, use that. Otherwise, pack our output values.
	if rawReturnData != nil {
		return rawReturnData.ReturnData, rawReturnData.Err
	}

	packedOutput, err := methodInfo.method.Outputs.Pack(outputValues...)
	if err != nil {
		revertData := cheatCodeRevertMessage(fmt.Sprintf("%v: failed to encode return values of %v: %v", p.name, methodInfo.method.Sig, err))
		return revertData.ReturnData, revertData.Err
	}
	return packedOutput, nil
}
