package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "predict-account",
	Short: "Trade execution service for predict.fun accounts",
	Long: `predict-account executes buy/sell orders against the predict.fun
exchange on behalf of managed accounts, propagates trade/fill/account
events over Redis streams to websocket subscribers, and plans bulk
position closures.

Orders are EIP-712 signed locally; private keys never leave the process.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
