package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/lifecycle"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/moolen/troubleshooter/internal/mcp"
	"github.com/spf13/cobra"
)

var (
	serverPort      int
	shutdownTimeout time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the troubleshooter API server",
	Long: `Start the HTTP API server. It serves diagnosis runs, the failure catalog,
fleet metadata, single checks, Prometheus metrics on /metrics and the MCP
streamable endpoint on /v1/mcp.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port the API server listens on (overrides server.port)")
	serverCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Grace period for each component on shutdown")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	logger := logging.GetLogger("server")

	tp, err := newTracing(cfg.Tracing)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{watch: true, tracer: tp.Tracer("troubleshooter.diagnosis")})
	if err != nil {
		return err
	}
	defer a.Close()

	mcpServer := mcp.NewServer(a.service, Version)
	apiServer := api.NewServer(api.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Service:      a.service,
		Gatherer:     a.promReg,
		MCP:          mcpServer.MCPServer(),
		Tracer:       tp.Tracer("troubleshooter.api"),
		Readiness:    a.readiness(),
	})

	manager := lifecycle.NewManager()
	manager.SetShutdownTimeout(shutdownTimeout)
	if err := manager.Register(tp); err != nil {
		return err
	}
	deps, err := a.register(manager)
	if err != nil {
		return err
	}
	if err := manager.Register(apiServer, append(deps, tp)...); err != nil {
		return err
	}

	if err := manager.Start(ctx); err != nil {
		return err
	}
	logger.Info("Troubleshooter %s serving on %s", Version, apiServer.Addr())

	<-ctx.Done()
	logger.Info("Shutdown signal received, gracefully shutting down...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout+5*time.Second)
	defer stopCancel()
	if err := manager.Stop(stopCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
