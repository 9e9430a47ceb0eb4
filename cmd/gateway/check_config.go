package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gatewayconfig "github.com/giantswarm/mcp-gateway/internal/config"
)

var checkConfigPath string

// checkConfigCmd loads and validates a config file without starting the
// listener, so it can be wired into a CI step or a container's readiness
// probe ahead of a real rollout.
var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a gateway config file without starting the server",
	Args:  cobra.NoArgs,
	RunE:  runCheckConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
	checkConfigCmd.Flags().StringVar(&checkConfigPath, "config", "", "Path to the gateway config file (default: $MCP_GATEWAY_CONFIG or ./gateway.yaml)")
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath(checkConfigPath)
	cfg, err := gatewayconfig.Load(path)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "invalid configuration at %s: %v\n", path, err)
		os.Exit(ExitCodeError)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (listen_addr=%s, persistence=%s)\n", path, cfg.Server.ListenAddr, cfg.Database.Mode)
	return nil
}
