package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// MCPEndpoint is the path of the streamable MCP endpoint
const MCPEndpoint = "/v1/mcp"

// ReadinessCheck returns an error while a dependency is not ready
type ReadinessCheck func(ctx context.Context) error

// Options configures the server
type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Service  *Service
	Gatherer prometheus.Gatherer
	MCP      *server.MCPServer
	Tracer   trace.Tracer

	// Readiness is keyed by dependency name
	Readiness map[string]ReadinessCheck
}

// Server handles HTTP API requests and implements lifecycle.Component
type Server struct {
	opts     Options
	router   *http.ServeMux
	server   *http.Server
	listener net.Listener
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewServer creates the server and registers its routes
func NewServer(opts Options) *Server {
	s := &Server{
		opts:   opts,
		router: http.NewServeMux(),
		logger: logging.GetLogger("api"),
		tracer: opts.Tracer,
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("api")
	}
	if s.opts.Gatherer == nil {
		s.opts.Gatherer = prometheus.DefaultGatherer
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	h := &handlers{service: s.opts.Service, logger: s.logger, tracer: s.tracer}

	s.router.HandleFunc("/v1/diagnose", s.withMethod(http.MethodGet, h.diagnose))
	s.router.HandleFunc("/v1/root-causes", s.withMethod(http.MethodGet, h.rootCauses))
	s.router.HandleFunc("/v1/failures", s.withMethod(http.MethodGet, h.failures))
	s.router.HandleFunc("/v1/fleet/choices", s.withMethod(http.MethodGet, h.choices))
	s.router.HandleFunc("/v1/partitions", s.withMethod(http.MethodGet, h.partition))
	s.router.HandleFunc("/v1/checks/{name}", s.withMethod(http.MethodGet, h.check))

	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	if s.opts.MCP != nil {
		streamable := server.NewStreamableHTTPServer(
			s.opts.MCP,
			server.WithEndpointPath(MCPEndpoint),
			server.WithStateLess(true),
		)
		s.router.Handle(MCPEndpoint, streamable)
		s.logger.Debug("MCP endpoint registered at %s", MCPEndpoint)
	}
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.router)
}

// Start listens on the configured port and serves in the background
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	s.logger.Info("API server listening on %s", ln.Addr())
	return nil
}

// Stop shuts the server down within ctx
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error: %v", err)
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

// Name implements lifecycle.Component
func (s *Server) Name() string {
	return "api-server"
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	for name, check := range s.opts.Readiness {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = WriteJSON(w, map[string]interface{}{"ready": ready, "checks": checks})
}
