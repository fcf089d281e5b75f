package chain

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/crytic/cheatvm/utils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/tidwall/gjson"
)

// StandardCheatcodeContractAddress is the address for the standard cheatcode contract
var StandardCheatcodeContractAddress = common.HexToAddress("0x7109709ECfa91a80626fF3989D68f67F5b1DD12D")

// MaxUint64 holds the max value an uint64 can take
var _, MaxUint64 = utils.GetIntegerConstraints(false, 64)

// maxBlobHashes is the cap on versioned blob hashes a transaction may carry (EIP-4844 blob count limit).
const maxBlobHashes = 6

// recordedCallReturn mirrors the tuple layout getRecordedCalls encodes its log entries with.
type recordedCallReturn struct {
	Account     common.Address
	Initialized bool
	Value       *big.Int
	Data        []byte
}

// verifyNotPrecompile rejects cheat code operations targeting the reserved precompile address range [1, 9]. The
// operation name is rendered capitalized in the rejection message (e.g. "Load", "SetNonce").
// Returns revert data carrying the rejection message, or nil if the address is acceptable.
func verifyNotPrecompile(name string, address common.Address) *cheatCodeRawReturnData {
	addrValue := new(big.Int).SetBytes(address.Bytes())
	if addrValue.Sign() > 0 && addrValue.Cmp(big.NewInt(10)) < 0 {
		return cheatCodeRevertMessage(fmt.Sprintf("%v cannot be used on precompile addresses (N < 10). Please use an address bigger than 10 instead", name))
	}
	return nil
}

// getStandardCheatCodeContract obtains a CheatCodeContract which implements common cheat codes.
// Returns the precompiled contract, or an error if one occurs.
func getStandardCheatCodeContract(tracer *cheatCodeTracer) (*CheatCodeContract, error) {
	// Create a new precompile to add methods to.
	contract := newCheatCodeContract(tracer, StandardCheatcodeContractAddress, "StdCheats")

	// Define some basic ABI argument types
	typeAddress, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes32, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes32Slice, err := abi.NewType("bytes32[]", "", nil)
	if err != nil {
		return nil, err
	}
	typeUint8, err := abi.NewType("uint8", "", nil)
	if err != nil {
		return nil, err
	}
	typeUint64, err := abi.NewType("uint64", "", nil)
	if err != nil {
		return nil, err
	}
	typeUint256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	typeInt256, err := abi.NewType("int256", "", nil)
	if err != nil {
		return nil, err
	}
	typeStringSlice, err := abi.NewType("string[]", "", nil)
	if err != nil {
		return nil, err
	}
	typeStringPairSlice, err := abi.NewType("string[2][]", "", nil)
	if err != nil {
		return nil, err
	}
	typeString, err := abi.NewType("string", "", nil)
	if err != nil {
		return nil, err
	}
	typeBool, err := abi.NewType("bool", "", nil)
	if err != nil {
		return nil, err
	}
	typeRecordedCallSlice, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "account", Type: "address"},
		{Name: "initialized", Type: "bool"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
	})
	if err != nil {
		return nil, err
	}

	// Warp: Sets VM timestamp
	contract.addMethod(
		"warp", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			// Retrieve new timestamp and make sure it is LEQ max value of an uint64
			newTime := inputs[0].(*big.Int)
			if newTime.Cmp(MaxUint64) > 0 {
				return nil, cheatCodeRevertMessage("warp: timestamp exceeds max value of type(uint64).max")
			}

			tracer.chain.BlockContext().Time = newTime.Uint64()
			return nil, nil
		},
	)

	// Roll: Sets VM block number
	contract.addMethod(
		"roll", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.BlockContext().Number.Set(inputs[0].(*big.Int))
			return nil, nil
		},
	)

	// Fee: Update base fee
	contract.addMethod(
		"fee", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.BlockContext().BaseFee.Set(inputs[0].(*big.Int))
			return nil, nil
		},
	)

	// Difficulty: Updates difficulty
	contract.addMethod(
		"difficulty", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			// In newer evm versions, block.difficulty uses opRandom instead of opDifficulty.
			tracer.chain.BlockContext().Random = common.BigToHash(inputs[0].(*big.Int))
			return nil, nil
		},
	)

	// Prevrandao: Sets the block prevrandao value
	contract.addMethod(
		"prevrandao", abi.Arguments{{Type: typeBytes32}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.BlockContext().Random = common.Hash(inputs[0].([32]byte))
			return nil, nil
		},
	)

	// ChainId: Sets VM chain ID
	contract.addMethod(
		"chainId", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.BlockContext().ChainID.Set(inputs[0].(*big.Int))
			return nil, nil
		},
	)

	// Coinbase: Sets the block coinbase.
	contract.addMethod(
		"coinbase", abi.Arguments{{Type: typeAddress}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.BlockContext().Coinbase = inputs[0].(common.Address)
			return nil, nil
		},
	)

	// Blobhashes: Sets the versioned blob hashes of the current transaction.
	contract.addMethod(
		"blobhashes", abi.Arguments{{Type: typeBytes32Slice}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			rawHashes := inputs[0].([][32]byte)
			if len(rawHashes) > maxBlobHashes {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("blobhashes: blob hash count exceeds maximum of %d", maxBlobHashes))
			}
			hashes := make([]common.Hash, len(rawHashes))
			for i, rawHash := range rawHashes {
				hashes[i] = common.Hash(rawHash)
			}
			tracer.chain.BlockContext().BlobHashes = hashes
			return nil, nil
		},
	)

	// GetBlobhashes: Gets the versioned blob hashes of the current transaction.
	contract.addMethod(
		"getBlobhashes", abi.Arguments{}, abi.Arguments{{Type: typeBytes32Slice}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			hashes := tracer.chain.BlockContext().BlobHashes
			rawHashes := make([][32]byte, len(hashes))
			for i, hash := range hashes {
				rawHashes[i] = hash
			}
			return []any{rawHashes}, nil
		},
	)

	// Store: Sets a storage slot value in a given account.
	contract.addMethod(
		"store", abi.Arguments{{Type: typeAddress}, {Type: typeBytes32}, {Type: typeBytes32}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			if revertData := verifyNotPrecompile("Store", account); revertData != nil {
				return nil, revertData
			}
			slot := inputs[1].([32]byte)
			value := inputs[2].([32]byte)
			tracer.chain.State().SetState(account, slot, value)
			return nil, nil
		},
	)

	// Load: Loads a storage slot value from a given account.
	contract.addMethod(
		"load", abi.Arguments{{Type: typeAddress}, {Type: typeBytes32}}, abi.Arguments{{Type: typeBytes32}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			if revertData := verifyNotPrecompile("Load", account); revertData != nil {
				return nil, revertData
			}
			slot := inputs[1].([32]byte)
			value := tracer.chain.State().GetState(account, slot)
			return []any{value}, nil
		},
	)

	// Etch: Sets the code for a given account.
	contract.addMethod(
		"etch", abi.Arguments{{Type: typeAddress}, {Type: typeBytes}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			if revertData := verifyNotPrecompile("Etch", account); revertData != nil {
				return nil, revertData
			}
			code := inputs[1].([]byte)
			tracer.chain.State().SetCode(account, code)
			return nil, nil
		},
	)

	// Deal: Sets the balance for a given account.
	contract.addMethod(
		"deal", abi.Arguments{{Type: typeAddress}, {Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			if revertData := verifyNotPrecompile("Deal", account); revertData != nil {
				return nil, revertData
			}
			newBalance := inputs[1].(*big.Int)
			newBalanceUint256 := new(uint256.Int)
			newBalanceUint256.SetFromBig(newBalance)
			tracer.chain.State().SetBalance(account, newBalanceUint256)
			return nil, nil
		},
	)

	// GetNonce: Gets the nonce for a given account.
	contract.addMethod(
		"getNonce", abi.Arguments{{Type: typeAddress}}, abi.Arguments{{Type: typeUint64}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			nonce := tracer.chain.State().GetNonce(account)
			return []any{nonce}, nil
		},
	)

	// SetNonce: Sets the nonce for a given account.
	contract.addMethod(
		"setNonce", abi.Arguments{{Type: typeAddress}, {Type: typeUint64}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			account := inputs[0].(common.Address)
			if revertData := verifyNotPrecompile("SetNonce", account); revertData != nil {
				return nil, revertData
			}
			nonce := inputs[1].(uint64)
			tracer.chain.State().SetNonce(account, nonce)
			return nil, nil
		},
	)

	// snapshot: Takes a snapshot of the current state of the evm and returns the id associated with the snapshot
	contract.addMethod(
		"snapshot", abi.Arguments{}, abi.Arguments{{Type: typeUint256}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			snapshotID := tracer.chain.snapshots.Snapshot(tracer.chain.state)
			return []any{new(big.Int).SetUint64(snapshotID)}, nil
		},
	)

	// revertTo(uint256): Revert the state of the evm to a previous snapshot. Takes the snapshot id to revert to.
	contract.addMethod(
		"revertTo", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeBool}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			snapshotID := inputs[0].(*big.Int)
			if !snapshotID.IsUint64() {
				return []any{false}, nil
			}

			restoredState, ok := tracer.chain.snapshots.RevertTo(snapshotID.Uint64())
			if !ok {
				return []any{false}, nil
			}
			tracer.chain.state = restoredState

			if err := tracer.chain.SnapshotRevertedEvents.Publish(SnapshotRevertedEvent{
				Chain:      tracer.chain,
				SnapshotID: snapshotID.Uint64(),
			}); err != nil {
				tracer.chain.logger.Error("failed to publish snapshot reverted event", err)
			}
			return []any{true}, nil
		},
	)

	// recordCalls: Starts recording the outgoing calls of executing contracts.
	contract.addMethod(
		"recordCalls", abi.Arguments{}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			tracer.chain.recorder.Arm()
			return nil, nil
		},
	)

	// getRecordedCalls: Returns the calls recorded since recordCalls, clearing the log and stopping recording.
	contract.addMethod(
		"getRecordedCalls", abi.Arguments{}, abi.Arguments{{Type: typeRecordedCallSlice}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			recordedCalls := tracer.chain.recorder.Drain()
			returnedCalls := make([]recordedCallReturn, len(recordedCalls))
			for i, recordedCall := range recordedCalls {
				returnedCalls[i] = recordedCallReturn{
					Account:     recordedCall.Account,
					Initialized: recordedCall.Initialized,
					Value:       recordedCall.Value,
					Data:        recordedCall.Data,
				}
			}
			return []any{returnedCalls}, nil
		},
	)

	// assume: Discards the current test case if the condition does not hold.
	contract.addMethod(
		"assume", abi.Arguments{{Type: typeBool}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			if !inputs[0].(bool) {
				return nil, cheatCodeDiscardData()
			}
			return nil, nil
		},
	)

	// addr: Compute the address for a given private key
	contract.addMethod("addr", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeAddress}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			// Get the private key object
			privateKey, err := utils.GetPrivateKey(inputs[0].(*big.Int).Bytes())
			if err != nil {
				return nil, cheatCodeRevertMessage("addr: " + err.Error())
			}

			// Get ECDSA public key
			publicKey := privateKey.Public().(*ecdsa.PublicKey)

			// Get associated address
			addr := crypto.PubkeyToAddress(*publicKey)

			return []any{addr}, nil
		},
	)

	// sign: Sign a digest given some private key
	contract.addMethod("sign", abi.Arguments{{Type: typeUint256}, {Type: typeBytes32}},
		abi.Arguments{{Type: typeUint8}, {Type: typeBytes32}, {Type: typeBytes32}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			// Get the private key object
			privateKey, err := utils.GetPrivateKey(inputs[0].(*big.Int).Bytes())
			if err != nil {
				return nil, cheatCodeRevertMessage("sign: " + err.Error())
			}

			// Sign digest
			digest := inputs[1].([32]byte)
			sig, err := crypto.Sign(digest[:], privateKey)
			if err != nil {
				return nil, cheatCodeRevertMessage("sign: malformed input to signature algorithm")
			}

			// `r` and `s` have to be [32]byte arrays
			var r [32]byte
			var s [32]byte
			copy(r[:], sig[:32])
			copy(s[:], sig[32:64])

			// Need to add 27 to the `v` value for ecrecover to work
			v := sig[64] + 27

			return []any{v, r, s}, nil
		},
	)

	// signP256: Sign a digest with a secp256r1 private key
	contract.addMethod("signP256", abi.Arguments{{Type: typeUint256}, {Type: typeBytes32}},
		abi.Arguments{{Type: typeBytes32}, {Type: typeBytes32}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			privateKey, err := utils.GetP256PrivateKey(inputs[0].(*big.Int))
			if err != nil {
				return nil, cheatCodeRevertMessage("signP256: " + err.Error())
			}

			digest := inputs[1].([32]byte)
			r, s, err := utils.SignP256Digest(privateKey, digest)
			if err != nil {
				return nil, cheatCodeRevertMessage("signP256: malformed input to signature algorithm")
			}

			return []any{[32]byte(common.BigToHash(r)), [32]byte(common.BigToHash(s))}, nil
		},
	)

	// FFI: Run arbitrary command on base OS
	contract.addMethod(
		"ffi", abi.Arguments{{Type: typeStringSlice}}, abi.Arguments{{Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			// Ensure FFI is enabled (this allows arbitrary code execution, so we expect it to be explicitly enabled).
			if !tracer.chain.testChainConfig.CheatCodeConfig.EnableFFI {
				return nil, cheatCodeRevertMessage("ffi is not enabled in the chain configuration")
			}

			command, args, revertData := splitCommandLine("ffi", inputs[0].([]string))
			if revertData != nil {
				return nil, revertData
			}

			exitCode, stdout, stderr, err := tracer.chain.hostBridge.RunCommand(tracer.chain.testChainConfig.Root, command, args...)
			if err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("ffi: cmd failed with the following error: %v", err))
			}
			if exitCode != 0 {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("ffi: cmd failed with exit code %d: %v", exitCode, string(stderr)))
			}

			return []any{decodeCommandOutput(stdout)}, nil
		},
	)

	// tryFfi: Run arbitrary command on base OS, reporting failure through the result instead of reverting.
	contract.addMethod(
		"tryFfi", abi.Arguments{{Type: typeStringSlice}},
		abi.Arguments{{Type: typeInt256}, {Type: typeBytes}, {Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			if !tracer.chain.testChainConfig.CheatCodeConfig.EnableFFI {
				return nil, cheatCodeRevertMessage("tryFfi is not enabled in the chain configuration")
			}

			command, args, revertData := splitCommandLine("tryFfi", inputs[0].([]string))
			if revertData != nil {
				return nil, revertData
			}

			exitCode, stdout, stderr, err := tracer.chain.hostBridge.RunCommand(tracer.chain.testChainConfig.Root, command, args...)
			if err != nil {
				// The command could not be spawned at all. This is still reported through the result, with the
				// spawn error taking the place of the process's stderr.
				return []any{big.NewInt(-1), []byte{}, []byte(err.Error())}, nil
			}

			return []any{big.NewInt(int64(exitCode)), decodeCommandOutput(stdout), stderr}, nil
		},
	)

	// setEnv: Sets an environment variable
	contract.addMethod(
		"setEnv", abi.Arguments{{Type: typeString}, {Type: typeString}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			key := inputs[0].(string)
			value := inputs[1].(string)
			if key == "" {
				return nil, cheatCodeRevertMessage("setEnv: environment variable key can't be empty")
			}
			if strings.Contains(key, "=") {
				return nil, cheatCodeRevertMessage("setEnv: environment variable key can't contain equal sign `=`")
			}
			if strings.ContainsRune(key, 0) {
				return nil, cheatCodeRevertMessage("setEnv: environment variable key can't contain NUL character `\\0`")
			}
			if strings.ContainsRune(value, 0) {
				return nil, cheatCodeRevertMessage("setEnv: environment variable value can't contain NUL character `\\0`")
			}

			if err := tracer.chain.hostBridge.Setenv(key, value); err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("setEnv: failed to set environment variable: %v", err))
			}
			return nil, nil
		},
	)

	// envString: Reads an environment variable as a string
	contract.addMethod(
		"envString", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			key := inputs[0].(string)
			value, ok := tracer.chain.hostBridge.Getenv(key)
			if !ok {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("envString: environment variable `%v` not found", key))
			}
			return []any{value}, nil
		},
	)

	// envUint: Reads an environment variable as a uint256
	contract.addMethod(
		"envUint", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeUint256}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			key := inputs[0].(string)
			value, ok := tracer.chain.hostBridge.Getenv(key)
			if !ok {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("envUint: environment variable `%v` not found", key))
			}

			// Accept both decimal and 0x-prefixed hexadecimal values.
			var n *big.Int
			var parsed bool
			if strings.HasPrefix(value, "0x") {
				n, parsed = new(big.Int).SetString(value[2:], 16)
			} else {
				n, parsed = new(big.Int).SetString(value, 10)
			}
			if !parsed || n.Sign() < 0 {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("envUint: failed to parse environment variable `%v` as uint256", key))
			}
			return []any{n}, nil
		},
	)

	// envBool: Reads an environment variable as a bool
	contract.addMethod(
		"envBool", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBool}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			key := inputs[0].(string)
			value, ok := tracer.chain.hostBridge.Getenv(key)
			if !ok {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("envBool: environment variable `%v` not found", key))
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("envBool: failed to parse environment variable `%v` as bool", key))
			}
			return []any{b}, nil
		},
	)

	// rpcUrl: Resolves a configured RPC endpoint alias to its URL
	contract.addMethod(
		"rpcUrl", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			alias := inputs[0].(string)
			for _, endpoint := range tracer.chain.testChainConfig.RPCEndpoints {
				// An entry with an empty URL defers to the environment variable fallback.
				if endpoint.Alias == alias && endpoint.URL != "" {
					return []any{endpoint.URL}, nil
				}
			}

			// Unconfigured aliases fall back to an RPC_<ALIAS> environment variable.
			envKey := "RPC_" + strings.ToUpper(alias)
			if url, ok := tracer.chain.hostBridge.Getenv(envKey); ok {
				return []any{url}, nil
			}
			return nil, cheatCodeRevertMessage(fmt.Sprintf("Failed to resolve env var `%v`: environment variable not found", envKey))
		},
	)

	// rpcUrls: Returns all known RPC endpoints as (alias, url) pairs
	contract.addMethod(
		"rpcUrls", abi.Arguments{}, abi.Arguments{{Type: typeStringPairSlice}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			var pairs [][2]string
			configured := make(map[string]struct{})
			for _, endpoint := range tracer.chain.testChainConfig.RPCEndpoints {
				// Entries with an empty URL defer to the environment scan below.
				if endpoint.URL == "" {
					continue
				}
				pairs = append(pairs, [2]string{endpoint.Alias, endpoint.URL})
				configured[endpoint.Alias] = struct{}{}
			}

			// Environment-provided endpoints follow the configured ones. Configured aliases shadow them.
			for _, entry := range tracer.chain.hostBridge.Environ() {
				key, value, found := strings.Cut(entry, "=")
				if !found || !strings.HasPrefix(key, "RPC_") {
					continue
				}
				alias := strings.ToLower(strings.TrimPrefix(key, "RPC_"))
				if alias == "" {
					continue
				}
				if _, ok := configured[alias]; ok {
					continue
				}
				pairs = append(pairs, [2]string{alias, value})
			}
			return []any{pairs}, nil
		},
	)

	// sleep: Blocks for the given number of milliseconds
	contract.addMethod(
		"sleep", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			milliseconds := inputs[0].(*big.Int)
			if milliseconds.Cmp(MaxUint64) > 0 {
				return nil, cheatCodeRevertMessage("sleep: duration exceeds max value of type(uint64).max")
			}
			tracer.chain.hostBridge.Sleep(time.Duration(milliseconds.Uint64()) * time.Millisecond)
			return nil, nil
		},
	)

	// unixTime: Returns the host wall clock time in milliseconds since the Unix epoch
	contract.addMethod(
		"unixTime", abi.Arguments{}, abi.Arguments{{Type: typeUint256}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{big.NewInt(tracer.chain.hostBridge.UnixTimeMilli())}, nil
		},
	)

	// readFile: Reads the contents of a file as a string
	contract.addMethod(
		"readFile", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			path := inputs[0].(string)
			data, err := tracer.chain.hostBridge.ReadFile(tracer.chain.resolvePath(path))
			if err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("readFile: could not read file %v: %v", path, err))
			}
			return []any{string(data)}, nil
		},
	)

	// getCode: Reads the creation bytecode from a compiled contract artifact file
	contract.addMethod(
		"getCode", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			path := inputs[0].(string)
			data, err := tracer.chain.hostBridge.ReadFile(tracer.chain.resolvePath(path))
			if err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("getCode: could not read artifact file %v: %v", path, err))
			}

			// Artifacts store the creation bytecode either as an object under "bytecode" or directly as a hex
			// string.
			bytecode := gjson.GetBytes(data, "bytecode.object")
			if !bytecode.Exists() {
				bytecode = gjson.GetBytes(data, "bytecode")
			}
			if !bytecode.Exists() || bytecode.Type != gjson.String {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("getCode: artifact file %v does not contain creation bytecode", path))
			}

			code, err := hex.DecodeString(strings.TrimPrefix(bytecode.String(), "0x"))
			if err != nil {
				return nil, cheatCodeRevertMessage(fmt.Sprintf("getCode: artifact file %v contains malformed bytecode", path))
			}
			return []any{code}, nil
		},
	)

	// parseJson(string): ABI-encodes an entire JSON document
	contract.addMethod(
		"parseJson", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return parseJSONHandler(inputs[0].(string), "")
		},
	)

	// parseJson(string,string): ABI-encodes the JSON value at the given path
	contract.addMethod(
		"parseJson", abi.Arguments{{Type: typeString}, {Type: typeString}}, abi.Arguments{{Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return parseJSONHandler(inputs[0].(string), inputs[1].(string))
		},
	)

	// toLowercase: Converts a string to lowercase
	contract.addMethod("toLowercase", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{strings.ToLower(inputs[0].(string))}, nil
		},
	)

	// toUppercase: Converts a string to uppercase
	contract.addMethod("toUppercase", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{strings.ToUpper(inputs[0].(string))}, nil
		},
	)

	// trim: Strips leading and trailing whitespace from a string
	contract.addMethod("trim", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{strings.TrimSpace(inputs[0].(string))}, nil
		},
	)

	// replace: Replaces all occurrences of a substring within a string
	contract.addMethod("replace", abi.Arguments{{Type: typeString}, {Type: typeString}, {Type: typeString}},
		abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{strings.ReplaceAll(inputs[0].(string), inputs[1].(string), inputs[2].(string))}, nil
		},
	)

	// split: Splits a string by a delimiter
	contract.addMethod("split", abi.Arguments{{Type: typeString}, {Type: typeString}},
		abi.Arguments{{Type: typeStringSlice}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			delimiter := inputs[1].(string)
			if delimiter == "" {
				return nil, cheatCodeRevertMessage("split: delimiter can't be empty")
			}
			return []any{strings.Split(inputs[0].(string), delimiter)}, nil
		},
	)

	// toString(address): Convert address to string
	contract.addMethod("toString", abi.Arguments{{Type: typeAddress}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			addr := inputs[0].(common.Address)
			return []any{addr.String()}, nil
		},
	)

	// toString(bool): Convert bool to string
	contract.addMethod("toString", abi.Arguments{{Type: typeBool}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			b := inputs[0].(bool)
			return []any{strconv.FormatBool(b)}, nil
		},
	)

	// toString(uint256): Convert uint256 to string
	contract.addMethod("toString", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			n := inputs[0].(*big.Int)
			return []any{n.String()}, nil
		},
	)

	// toString(int256): Convert int256 to string
	contract.addMethod("toString", abi.Arguments{{Type: typeInt256}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			n := inputs[0].(*big.Int)
			return []any{n.String()}, nil
		},
	)

	// toString(bytes32): Convert bytes32 to string
	contract.addMethod("toString", abi.Arguments{{Type: typeBytes32}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			b := inputs[0].([32]byte)
			// Prefix "0x"
			hexString := "0x" + hex.EncodeToString(b[:])

			return []any{hexString}, nil
		},
	)

	// toString(bytes): Convert bytes to string
	contract.addMethod("toString", abi.Arguments{{Type: typeBytes}}, abi.Arguments{{Type: typeString}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			b := inputs[0].([]byte)
			// Prefix "0x"
			hexString := "0x" + hex.EncodeToString(b)

			return []any{hexString}, nil
		},
	)

	// parseBytes: Convert string to bytes
	contract.addMethod("parseBytes", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBytes}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{[]byte(inputs[0].(string))}, nil
		},
	)

	// parseBytes32: Convert string to bytes32
	contract.addMethod("parseBytes32", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBytes32}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			bSlice := []byte(inputs[0].(string))

			// Use a fixed array and copy the data over
			var bArray [32]byte
			copy(bArray[:], bSlice)

			return []any{bArray}, nil
		},
	)

	// parseAddress: Convert string to address
	contract.addMethod("parseAddress", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeAddress}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			addr, err := utils.HexStringToAddress(inputs[0].(string))
			if err != nil {
				return nil, cheatCodeRevertMessage("parseAddress: malformed string")
			}

			return []any{addr}, nil
		},
	)

	// parseUint: Convert string to uint256
	contract.addMethod("parseUint", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeUint256}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			n, ok := new(big.Int).SetString(inputs[0].(string), 10)
			if !ok {
				return nil, cheatCodeRevertMessage("parseUint: malformed string")
			}

			return []any{n}, nil
		},
	)

	// parseInt: Convert string to int256
	contract.addMethod("parseInt", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeInt256}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			n, ok := new(big.Int).SetString(inputs[0].(string), 10)
			if !ok {
				return nil, cheatCodeRevertMessage("parseInt: malformed string")
			}

			return []any{n}, nil
		},
	)

	// parseBool: Convert string to bool
	contract.addMethod("parseBool", abi.Arguments{{Type: typeString}}, abi.Arguments{{Type: typeBool}},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			b, err := strconv.ParseBool(inputs[0].(string))
			if err != nil {
				return nil, cheatCodeRevertMessage("parseBool: malformed string")
			}

			return []any{b}, nil
		},
	)

	// Return our precompile contract information.
	return contract, nil
}

// splitCommandLine validates and splits a cheat code command line into the program name and its arguments.
// Returns revert data if no command was provided.
func splitCommandLine(name string, cmdAndInputs []string) (string, []string, *cheatCodeRawReturnData) {
	if len(cmdAndInputs) < 1 {
		return "", nil, cheatCodeRevertMessage(fmt.Sprintf("%v: no command was provided", name))
	}
	return cmdAndInputs[0], cmdAndInputs[1:], nil
}

// decodeCommandOutput interprets captured process stdout the way the ffi cheat codes expose it: the output is
// trimmed and hex decoded if it forms a valid hex string, otherwise the raw bytes are returned as-is.
func decodeCommandOutput(stdout []byte) []byte {
	trimmed := strings.TrimSpace(string(stdout))
	hexOut, err := hex.DecodeString(strings.TrimPrefix(trimmed, "0x"))
	if err != nil {
		return stdout
	}
	return hexOut
}

// parseJSONHandler resolves a path within a JSON document and ABI-encodes the value found there using the canonical
// type inferred from its shape. An empty path selects the whole document.
func parseJSONHandler(document string, path string) ([]any, *cheatCodeRawReturnData) {
	value, err := queryJSONDocument(document, path)
	if err != nil {
		return nil, cheatCodeRevertMessage("parseJson: " + err.Error())
	}
	encoded, err := encodeJSONValue(value)
	if err != nil {
		return nil, cheatCodeRevertMessage("parseJson: " + err.Error())
	}
	return []any{encoded}, nil
}
