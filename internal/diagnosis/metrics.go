package diagnosis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for pipeline runs. A nil *Metrics is a no-op.
type Metrics struct {
	UnmappedTriggers *prometheus.CounterVec // trigger labels without a bound check
	CheckEvaluations *prometheus.CounterVec // check outcomes by check and result
	Runs             *prometheus.CounterVec // completed runs by outcome
	RunDuration      prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	unmapped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "troubleshooter_unmapped_triggers_total",
		Help: "Trigger labels reached by a walk that have no bound diagnostic check",
	}, []string{"trigger"})

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "troubleshooter_check_evaluations_total",
		Help: "Diagnostic check evaluations by check and result (true, false, error)",
	}, []string{"check", "result"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "troubleshooter_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "troubleshooter_run_duration_seconds",
		Help:    "Duration of pipeline runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	reg.MustRegister(unmapped, evaluations, runs, duration)

	return &Metrics{
		UnmappedTriggers: unmapped,
		CheckEvaluations: evaluations,
		Runs:             runs,
		RunDuration:      duration,
	}
}

func (m *Metrics) unmapped(trigger string) {
	if m == nil {
		return
	}
	m.UnmappedTriggers.WithLabelValues(trigger).Inc()
}

func (m *Metrics) evaluated(check, result string) {
	if m == nil {
		return
	}
	m.CheckEvaluations.WithLabelValues(check, result).Inc()
}

func (m *Metrics) run(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}
