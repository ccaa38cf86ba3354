package diagnosis

import (
	"context"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/warehouse"
)

// Registry selects the check bound to a trigger label
type Registry interface {
	Lookup(trigger string) (check checks.Check, name string, ok bool)
}

// Execution is the output of Executor.Execute
type Execution struct {
	Records  []CheckRecord
	Unmapped []string
}

// Executor runs extracted checks against one connection
type Executor struct {
	registry Registry
	metrics  *Metrics
}

// NewExecutor creates an executor; metrics may be nil
func NewExecutor(registry Registry, metrics *Metrics) *Executor {
	return &Executor{registry: registry, metrics: metrics}
}

// Execute evaluates every extracted (trigger, consume, channel) triple with
// the check bound to its trigger. Triggers without a binding produce no
// record and are listed in Unmapped. The first check error aborts the batch.
func (e *Executor) Execute(ctx context.Context, extracted []Triple, q warehouse.Querier, partitionID string) (*Execution, error) {
	out := &Execution{Records: []CheckRecord{}, Unmapped: []string{}}
	unmapped := map[string]struct{}{}

	for _, t := range extracted {
		check, name, ok := e.registry.Lookup(t.Subject)
		if !ok {
			if _, dup := unmapped[t.Subject]; !dup {
				unmapped[t.Subject] = struct{}{}
				out.Unmapped = append(out.Unmapped, t.Subject)
				e.metrics.unmapped(t.Subject)
			}
			continue
		}

		status, err := check.Evaluate(ctx, q, partitionID, t.Object)
		if err != nil {
			e.metrics.evaluated(name, "error")
			return nil, &CheckError{Trigger: t.Subject, Channel: t.Object, Check: name, Err: err}
		}
		e.metrics.evaluated(name, boolLabel(status))

		out.Records = append(out.Records, CheckRecord{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    t.Object,
			Status:    &status,
			Check:     name,
		})
	}
	return out, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
