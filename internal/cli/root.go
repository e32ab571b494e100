// Package cli implements the LumeIQ command-line interface using Cobra.
// Each subcommand maps to one engine capability (serve, status, verify,
// route, session, coupons).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lumeiq",
	Short: "LumeIQ — local sustainability impact engine",
	Long: `LumeIQ tracks verified eco actions into a persistent impact score.
Photo proofs, activity sessions, live trips, and route comparisons all feed
three pillar scores that derive your Impact IQ and reward tier.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
