package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/config"
	"github.com/moolen/troubleshooter/internal/diagnosis"
	"github.com/moolen/troubleshooter/internal/graph"
	"github.com/moolen/troubleshooter/internal/lifecycle"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/moolen/troubleshooter/internal/ontology"
	"github.com/moolen/troubleshooter/internal/tracing"
	"github.com/moolen/troubleshooter/internal/warehouse"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// app holds the dependencies every command is built from. The core pipeline
// receives them explicitly; nothing here is global.
type app struct {
	cfg    *config.Config
	logger *logging.Logger

	source      ontology.Source
	snapshot    *ontology.Snapshot
	watcher     *ontology.Watcher
	graphClient graph.Client

	warehouse    *warehouse.Warehouse
	warehouseErr error

	registry *checks.Registry
	metrics  *diagnosis.Metrics
	promReg  *prometheus.Registry
	runner   *diagnosis.Runner
	service  *api.Service
}

type appOptions struct {
	// watch enables the ontology file watcher
	watch  bool
	tracer trace.Tracer
}

// newApp wires the ontology store, warehouse pool, check registry and runner.
// A warehouse that cannot be opened is not fatal: runs then fail with
// ConnectionUnavailable, and the reason is kept for readiness reporting.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	if err := cfg.Validate(checks.Known); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logging.GetLogger("troubleshooter"), promReg: prometheus.NewRegistry()}

	if err := a.openOntology(ctx, opts.watch); err != nil {
		a.Close()
		return nil, err
	}
	a.openWarehouse(ctx)

	dialect, err := warehouse.DialectFor(cfg.Warehouse.Driver)
	if err != nil {
		a.Close()
		return nil, err
	}
	tables := warehouse.WithOverrides(cfg.Warehouse.Tables)
	if err := tables.Validate(); err != nil {
		a.Close()
		return nil, err
	}
	a.registry, err = checks.NewStandardRegistry(dialect, tables, cfg.Checks.Bindings)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.promReg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	a.metrics = diagnosis.NewMetrics(a.promReg)

	runnerOpts := []diagnosis.Option{
		diagnosis.WithMaxDepth(cfg.Diagnosis.MaxDepth),
		diagnosis.WithMetrics(a.metrics),
	}
	if opts.tracer != nil {
		runnerOpts = append(runnerOpts, diagnosis.WithTracer(opts.tracer))
	}
	a.runner = diagnosis.NewRunner(a.source, a.warehouse, a.registry, runnerOpts...)

	var fleet api.Fleet
	if a.warehouse != nil {
		fleet = a.warehouse.Fleet()
	}
	a.service = api.NewService(a.runner, a.warehouse, a.registry, fleet)
	return a, nil
}

func (a *app) openOntology(ctx context.Context, watch bool) error {
	cfg := a.cfg.Ontology

	switch cfg.Backend {
	case config.BackendFalkorDB:
		fc := a.cfg.FalkorDB
		clientCfg := graph.DefaultClientConfig()
		clientCfg.Host = fc.Host
		clientCfg.Port = fc.Port
		clientCfg.Password = fc.Password
		clientCfg.GraphName = fc.GraphName
		clientCfg.DialTimeout = fc.DialTimeout
		clientCfg.ReadTimeout = fc.ReadTimeout
		clientCfg.WriteTimeout = fc.WriteTimeout
		clientCfg.PoolSize = fc.PoolSize

		client := graph.NewClient(clientCfg)
		if err := client.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to FalkorDB: %w", err)
		}
		a.graphClient = client

		var store ontology.Store = ontology.NewFalkorStore(client, int(fc.ReadTimeout.Milliseconds()))
		if cfg.CacheSize > 0 {
			cached, err := ontology.NewCachedStore(store, cfg.CacheSize)
			if err != nil {
				return err
			}
			store = cached
		}
		a.source = ontology.StaticSource{Store: store}
		a.logger.Info("Using FalkorDB ontology graph %q at %s:%d", fc.GraphName, fc.Host, fc.Port)
		return nil

	default:
		store, err := ontology.LoadFile(cfg.Path, cfg.Namespace, cfg.MinVersion)
		if err != nil {
			return err
		}
		a.snapshot = ontology.NewSnapshot(store)
		a.source = a.snapshot
		a.logger.Info("Loaded ontology %s (version %q, %d statements)", cfg.Path, store.Version(), store.TripleCount())

		if watch && cfg.Watch {
			w, err := ontology.NewWatcher(ontology.WatcherConfig{
				Path:       cfg.Path,
				Namespace:  cfg.Namespace,
				MinVersion: cfg.MinVersion,
			}, a.snapshot)
			if err != nil {
				return err
			}
			a.watcher = w
		}
		return nil
	}
}

func (a *app) openWarehouse(ctx context.Context) {
	cfg := a.cfg.Warehouse

	if err := config.LoadCredentials(cfg.EnvFile); err != nil {
		a.warehouseErr = err
		a.logger.Warn("Warehouse unavailable: %v", err)
		return
	}
	dsn, err := cfg.ResolveDSN()
	if err != nil {
		a.warehouseErr = err
		a.logger.Warn("Warehouse unavailable: %v", err)
		return
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	w, err := warehouse.Open(openCtx, warehouse.Options{
		Driver:          cfg.Driver,
		DSN:             dsn,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		Tables:          warehouse.WithOverrides(cfg.Tables),
	})
	if err != nil {
		a.warehouseErr = err
		a.logger.Warn("Warehouse unavailable: %v", err)
		return
	}
	a.warehouse = w
}

// readiness reports the state of the warehouse and the ontology store
func (a *app) readiness() map[string]api.ReadinessCheck {
	return map[string]api.ReadinessCheck{
		"warehouse": func(ctx context.Context) error {
			if a.warehouse == nil {
				return fmt.Errorf("not connected: %v", a.warehouseErr)
			}
			return a.warehouse.Ping(ctx)
		},
		"ontology": func(ctx context.Context) error {
			if a.graphClient != nil {
				return a.graphClient.Ping(ctx)
			}
			if a.source.Current() == nil {
				return fmt.Errorf("no ontology loaded")
			}
			return nil
		},
	}
}

// register adds the app-owned components to m and returns them as dependencies for the API server
func (a *app) register(m *lifecycle.Manager) ([]lifecycle.Component, error) {
	var deps []lifecycle.Component
	if a.watcher != nil {
		if err := m.Register(a.watcher); err != nil {
			return nil, err
		}
		deps = append(deps, a.watcher)
	}
	return deps, nil
}

// Close releases the warehouse pool and the graph client
func (a *app) Close() {
	if a.warehouse != nil {
		if err := a.warehouse.Close(); err != nil {
			a.logger.Warn("Error closing warehouse: %v", err)
		}
	}
	if a.graphClient != nil {
		if err := a.graphClient.Close(); err != nil {
			a.logger.Warn("Error closing graph client: %v", err)
		}
	}
}

func newTracing(cfg config.TracingConfig) (*tracing.Provider, error) {
	return tracing.NewProvider(tracing.Config{
		Enabled:     cfg.Enabled,
		Endpoint:    cfg.Endpoint,
		TLSCAPath:   cfg.TLSCAPath,
		TLSInsecure: cfg.TLSInsecure,
		Version:     Version,
	})
}
