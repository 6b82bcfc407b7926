package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/app"
	"github.com/ent0n29/neuromod/internal/config"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools over MCP on stdin/stdout",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			res.Logger.Warn("cleanup failed", zap.Error(err))
		}
	}()

	sweeperDone := res.Sessions.StartSweeper(ctx, cfg.SweepInterval)
	defer func() {
		stop()
		<-sweeperDone
	}()

	res.Logger.Info("serving mcp on stdio", zap.String("store", res.Store.Mode()))
	if err := res.Catalog.NewServer(Version).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
