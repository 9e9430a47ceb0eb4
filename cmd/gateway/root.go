// Package cmd is the gateway binary's cobra command tree: serve, version,
// and check-config.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 0 clean shutdown, 1 startup or runtime error, 130 SIGINT
// before successful startup.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeSIGINT  = 130
)

// rootCmd is the base command for the gateway binary.
var rootCmd = &cobra.Command{
	Use:           "gateway",
	Short:         "A unified reverse-proxy gateway for MCP servers",
	Long:          `gateway routes Model Context Protocol requests to registered backend MCP server instances, load balancing, health checking, and falling back to an ephemeral stdio session when no instance is available.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion injects the build-time version into the root command, shown
// by --version and the version subcommand.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the command tree and translates a returned error into a
// process exit code.
func Execute() {
	rootCmd.SetVersionTemplate("gateway version {{.Version}}\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}
