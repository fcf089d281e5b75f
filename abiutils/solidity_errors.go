package abiutils

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/vm"
)

// errorReturnDataAbi describes the standard Solidity `Error(string)` method used to encode revert reason strings
// into return data.
var errorReturnDataAbi abi.Method

func init() {
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	errorReturnDataAbi = abi.NewMethod("Error", "Error", abi.Function, "", false, false, []abi.Argument{
		{Name: "", Type: stringType, Indexed: false},
	}, abi.Arguments{})
}

// PackRevertReason encodes a revert reason string into return data following the standard Solidity
// `Error(string)` convention (4-byte selector followed by the ABI-encoded string).
// Returns the packed return data.
func PackRevertReason(reason string) []byte {
	// The only way packing a sole string can fail is an internal ABI definition error, which is a programming bug.
	packedData, err := errorReturnDataAbi.Inputs.Pack(reason)
	if err != nil {
		panic(err)
	}
	return append(bytes.Clone(errorReturnDataAbi.ID), packedData...)
}

// UnpackRevertReason obtains an error message from a VM error and return data, if possible.
// If the error and return data are not representative of an `Error(string)` revert, then nil is returned.
func UnpackRevertReason(returnError error, returnData []byte) *string {
	// Verify we have a revert, and our return data fits the selector + additional data.
	if errors.Is(returnError, vm.ErrExecutionReverted) && len(returnData) > 4 {
		// Verify the return data starts with the correct selector, then unpack the arguments.
		if bytes.Equal(returnData[:4], errorReturnDataAbi.ID) {
			values, err := errorReturnDataAbi.Inputs.Unpack(returnData[4:])

			// If they unpacked without issue, read the error string.
			if err == nil && len(values) > 0 {
				errorMessage := values[0].(string)
				return &errorMessage
			}
		}
	}

	return nil
}
