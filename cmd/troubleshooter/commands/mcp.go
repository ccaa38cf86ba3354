package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/moolen/troubleshooter/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Serve the diagnose, list_failures and run_check tools over the Model Context
Protocol stdio transport, for subprocess-based MCP clients. Logs go to stderr.
The HTTP transport is served by 'troubleshooter server' on /v1/mcp.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	logging.SetOutput(os.Stderr)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("mcp")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{watch: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = a.watcher.Stop(context.Background()) }()
	}

	logger.Info("Starting MCP stdio transport")
	if err := server.ServeStdio(mcp.NewServer(a.service, Version).MCPServer()); err != nil {
		logger.Error("Stdio transport error: %v", err)
		return err
	}
	return nil
}
