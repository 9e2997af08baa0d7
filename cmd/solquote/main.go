// Package main is the entry point for solquote.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "solquote",
		Short:        "Solana pool reserves and cross-venue quote comparison",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("rpc", "", "Solana RPC URL, overrides ledger.rpc_url")
	root.PersistentFlags().Bool("json", false, "print JSON instead of tables")

	root.AddCommand(
		newReservesCmd(),
		newCompareCmd(),
		newWatchCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "solquote %s (commit: %s, built: %s)\n", version, commit, buildDate)
			},
		},
	)
	return root
}
