package diagnosis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/moolen/troubleshooter/internal/ontology"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ConnProvider hands out one warehouse connection per run
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Runner executes the full pipeline. Its collaborators are injected; it holds
// no per-run state, so concurrent runs are independent.
type Runner struct {
	source   ontology.Source
	conns    ConnProvider
	executor *Executor
	metrics  *Metrics
	maxDepth int
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Option configures a Runner
type Option func(*Runner)

// WithMaxDepth bounds the walk; Unbounded (-1) is the default
func WithMaxDepth(depth int) Option {
	return func(r *Runner) { r.maxDepth = depth }
}

// WithMetrics records run metrics
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer used for run spans
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRunner creates a runner
func NewRunner(source ontology.Source, conns ConnProvider, registry Registry, opts ...Option) *Runner {
	r := &Runner{
		source:   source,
		conns:    conns,
		maxDepth: Unbounded,
		logger:   logging.GetLogger("diagnosis.runner"),
		tracer:   noop.NewTracerProvider().Tracer("diagnosis"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.executor = NewExecutor(registry, r.metrics)
	return r
}

// RunDiagnostics walks failure, executes its checks for partitionID on one
// connection and correlates the outcomes. The connection is acquired before
// the walk and released on every exit path.
func (r *Runner) RunDiagnostics(ctx context.Context, partitionID, failure string) (*Diagnosis, error) {
	started := time.Now()
	runID := uuid.New().String()

	ctx, span := r.tracer.Start(ctx, "diagnosis.RunDiagnostics", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("partition_id", partitionID),
		attribute.String("failure", failure),
	))
	defer span.End()

	d, err := r.run(ctx, runID, started, partitionID, failure)
	elapsed := time.Since(started)
	r.metrics.run(outcome(err), elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("triples", d.Depths.Len()),
		attribute.Int("executed_checks", d.Executed),
		attribute.Int("unmapped_triggers", len(d.Unmapped)),
	)
	return d, nil
}

func (r *Runner) run(ctx context.Context, runID string, started time.Time, partitionID, failure string) (*Diagnosis, error) {
	if r.conns == nil {
		return nil, connectionError(errors.New("no warehouse configured"))
	}
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return nil, connectionError(err)
	}
	defer conn.Close()

	store := r.sourceStore()
	if store == nil {
		return nil, &GraphQueryError{Concept: failure, Err: errors.New("no knowledge graph loaded")}
	}

	logger := r.logger.WithContext(ctx).WithField("run_id", runID)

	depths, err := Walk(ctx, store, failure, r.maxDepth)
	if err != nil {
		return nil, err
	}
	logger.Debug("Walk of %q found %d triples over %d depths", failure, depths.Len(), len(depths.Depths()))

	extracted := ExtractChecks(depths)
	execution, err := r.executor.Execute(ctx, extracted, conn, partitionID)
	if err != nil {
		return nil, err
	}
	if len(execution.Unmapped) > 0 {
		logger.Debug("Skipped %d unmapped triggers: %v", len(execution.Unmapped), execution.Unmapped)
	}

	d := &Diagnosis{
		RunID:       runID,
		PartitionID: partitionID,
		Failure:     failure,
		StartedAt:   started,
		Correlation: Correlate(depths, execution.Records),
		Depths:      depths,
		Executed:    len(execution.Records),
		Unmapped:    execution.Unmapped,
	}
	d.Duration = time.Since(started)
	return d, nil
}

// sourceStore captures the graph for one run
func (r *Runner) sourceStore() ontology.Store {
	if r.source == nil {
		return nil
	}
	return r.source.Current()
}

// ResolveRootCauses derives the implicated chains of a correlation
func (r *Runner) ResolveRootCauses(c Correlation, failure string) []RootCauseChain {
	return Resolve(c, failure)
}

// Diagnose runs the pipeline and resolves its chains
func (r *Runner) Diagnose(ctx context.Context, partitionID, failure string) (*Report, error) {
	d, err := r.RunDiagnostics(ctx, partitionID, failure)
	if err != nil {
		return nil, err
	}
	report := &Report{Diagnosis: *d, Chains: r.ResolveRootCauses(d.Correlation, failure)}

	r.logger.WithContext(ctx).InfoWithFields("Diagnosis complete",
		logging.Field("run_id", d.RunID),
		logging.Field("partition_id", partitionID),
		logging.Field("failure", failure),
		logging.Field("triples", d.Depths.Len()),
		logging.Field("executed_checks", d.Executed),
		logging.Field("unmapped_triggers", len(d.Unmapped)),
		logging.Field("chains", len(report.Chains)),
		logging.Field("duration", d.Duration.Round(time.Millisecond)),
	)
	return report, nil
}

// FailureLabels lists the failure modes of the current graph
func (r *Runner) FailureLabels(ctx context.Context) ([]string, error) {
	store := r.sourceStore()
	if store == nil {
		return nil, fmt.Errorf("%w: no knowledge graph loaded", ErrGraphQuery)
	}
	labels, err := store.FailureLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphQuery, err)
	}
	return labels, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnectionUnavailable):
		return "connection_unavailable"
	case errors.Is(err, ErrGraphQuery):
		return "graph_error"
	case errors.Is(err, ErrCheckExecution):
		return "check_error"
	default:
		return "error"
	}
}
