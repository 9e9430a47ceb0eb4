package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the build-injected version. The gateway is a single
// binary with no separate client/server version negotiation, so unlike
// a CLI that talks to a long-running daemon, there is nothing to query
// other than the binary's own build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gateway version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "gateway version %s\n", rootCmd.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
