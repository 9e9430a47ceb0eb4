package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-gateway/internal/app"
)

var (
	serveConfigPath string
	serveAddr       string
	serveDebug      bool
)

// serveCmd starts the gateway's HTTP listener, health-check loop, and
// config watcher, and blocks until it receives SIGINT/SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to the gateway config file (default: $MCP_GATEWAY_CONFIG or ./gateway.yaml)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Override the config file's server.listen_addr")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug-level logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.Options{
		ConfigPath:         resolveConfigPath(serveConfigPath),
		ListenAddrOverride: serveAddr,
		Debug:              serveDebug,
	}

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	application, err := app.NewApplication(ctx, opts)
	select {
	case <-sigint:
		os.Exit(ExitCodeSIGINT)
	default:
	}
	signal.Stop(sigint)
	if err != nil {
		return fmt.Errorf("failed to initialize gateway: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("gateway exited with error: %w", err)
	}
	return nil
}

// resolveConfigPath applies flag > MCP_GATEWAY_CONFIG env var > default
// precedence.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("MCP_GATEWAY_CONFIG"); env != "" {
		return env
	}
	return app.DefaultConfigPath
}
