package cmd

import (
	"github.com/crytic/cheatvm/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cheatvm",
	Short: "A cheat code dispatch engine for EVM test environments",
	Long:  "cheatvm hosts Foundry-style cheat code contracts at their reserved addresses and dispatches calls against a simulated EVM state",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Enable human-readable console output for all commands.
		logging.GlobalLogger = logging.NewLogger(zerolog.InfoLevel, true)
	},
}

func Execute() error {
	return rootCmd.Execute()
}
