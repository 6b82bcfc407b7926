package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neuromod",
	Short: "Intensity-driven cognitive modulation tools",
	Long: "neuromod serves modulation tools whose parameters are derived from a per-session dose. " +
		"Tools are available over MCP (stdio), HTTP and WebSocket.",
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(sweepCmd)
}
