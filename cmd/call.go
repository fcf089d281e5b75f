package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/crytic/cheatvm/chain"
	"github.com/crytic/cheatvm/chain/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// callCmd dispatches a single raw call against the standard cheat code contract and prints the result.
var callCmd = &cobra.Command{
	Use:   "call <calldata>",
	Short: "Dispatch raw call data to the standard cheat code contract",
	Long: "call constructs a fresh test chain, dispatches the given hex-encoded call data to the standard cheat " +
		"code contract at its reserved address, and prints the outcome along with any return data",
	Args:         cobra.ExactArgs(1),
	RunE:         cmdRunCall,
	SilenceUsage: true,
}

func init() {
	callCmd.Flags().String("sender", "0x0000000000000000000000000000000000010000", "address the call originates from")
	callCmd.Flags().Bool("enable-ffi", false, "enable the ffi/tryFfi cheat codes (allows arbitrary code execution)")
	callCmd.Flags().StringArray("rpc-endpoint", nil, "RPC endpoint alias table entry in alias=url form (repeatable)")
	callCmd.Flags().String("root", "", "base directory for file-reading cheat codes and FFI subprocesses")
	rootCmd.AddCommand(callCmd)
}

// cmdRunCall executes the call CLI command.
func cmdRunCall(cmd *cobra.Command, args []string) error {
	input, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		return errors.Wrap(err, "invalid call data")
	}

	testChainConfig, err := buildChainConfig(cmd)
	if err != nil {
		return err
	}

	testChain, err := chain.NewTestChain(testChainConfig, nil)
	if err != nil {
		return err
	}

	senderHex, err := cmd.Flags().GetString("sender")
	if err != nil {
		return err
	}
	if !common.IsHexAddress(senderHex) {
		return errors.Errorf("invalid sender address: %v", senderHex)
	}

	result, err := testChain.DispatchCheatCodeCall(common.HexToAddress(senderHex), chain.StandardCheatcodeContractAddress, input)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case chain.CallOutcomeSucceeded:
		fmt.Printf("success: 0x%x\n", result.ReturnData)
	case chain.CallOutcomeReverted:
		fmt.Printf("revert: 0x%x\n", result.ReturnData)
	case chain.CallOutcomeDiscarded:
		fmt.Println("discarded")
	}
	return nil
}

// buildChainConfig assembles a chain configuration from the call command's flags.
func buildChainConfig(cmd *cobra.Command) (*config.TestChainConfig, error) {
	testChainConfig, err := config.DefaultTestChainConfig()
	if err != nil {
		return nil, err
	}

	testChainConfig.CheatCodeConfig.EnableFFI, err = cmd.Flags().GetBool("enable-ffi")
	if err != nil {
		return nil, err
	}
	testChainConfig.Root, err = cmd.Flags().GetString("root")
	if err != nil {
		return nil, err
	}

	endpoints, err := cmd.Flags().GetStringArray("rpc-endpoint")
	if err != nil {
		return nil, err
	}
	for _, endpoint := range endpoints {
		alias, url, found := strings.Cut(endpoint, "=")
		if !found || alias == "" {
			return nil, errors.Errorf("invalid RPC endpoint entry %q, expected alias=url", endpoint)
		}
		testChainConfig.RPCEndpoints = append(testChainConfig.RPCEndpoints, config.RPCEndpoint{Alias: alias, URL: url})
	}
	return testChainConfig, nil
}
