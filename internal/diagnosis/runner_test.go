package diagnosis_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/diagnosis"
	"github.com/moolen/troubleshooter/internal/ontology"
	"github.com/moolen/troubleshooter/internal/warehouse"
	"github.com/moolen/troubleshooter/internal/warehouse/warehousetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	edges map[string][]ontology.Triple
	err   error
	calls int
}

func (s *mapStore) Neighborhood(_ context.Context, concept string) ([]ontology.Triple, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.edges[concept], nil
}

func (s *mapStore) FailureLabels(context.Context) ([]string, error) {
	return []string{"F"}, nil
}

func graphOf(triples ...ontology.Triple) *mapStore {
	s := &mapStore{edges: map[string][]ontology.Triple{}}
	for _, t := range triples {
		s.edges[t.Subject] = append(s.edges[t.Subject], t)
	}
	return s
}

func edge(s, p, o string) ontology.Triple {
	return ontology.Triple{Subject: s, Predicate: p, Object: o}
}

// singleChain is F -> R1 -> Tr1 -> MCDIGVLTFM
func singleChain() *mapStore {
	return graphOf(
		edge("F", ontology.RelHasRootCause, "R1"),
		edge("R1", ontology.RelIsTriggeredBy, "Tr1"),
		edge("Tr1", ontology.RelConsume, "MCDIGVLTFM"),
	)
}

func registry(t *testing.T, bindings map[string]string) *checks.Registry {
	t.Helper()
	r, err := checks.NewStandardRegistry(warehouse.SQLite{}, warehousetest.Tables(), bindings)
	require.NoError(t, err)
	return r
}

type failingConns struct{}

func (failingConns) Conn(context.Context) (*sql.Conn, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestDiagnose_ThresholdExceeded(t *testing.T) {
	db := warehousetest.Open(t)
	db.LimitCheck("p1", "MCDIGVLTFM", "above_sigma_one", 15000)

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, db.Warehouse,
		registry(t, map[string]string{"Tr1": checks.ThresholdSup10450}))

	report, err := runner.Diagnose(context.Background(), "p1", "F")
	require.NoError(t, err)

	assert.Equal(t, []diagnosis.RootCauseChain{{RootCause: "R1", Trigger: "Tr1", DataChannel: "MCDIGVLTFM"}}, report.Chains)
	assert.Equal(t, 1, report.Executed)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "p1", report.PartitionID)
	assert.Equal(t, []int{0, 1, 2, 3}, report.Depths.Depths())
}

func TestDiagnose_ThresholdNotExceeded(t *testing.T) {
	db := warehousetest.Open(t)
	db.LimitCheck("p1", "MCDIGVLTFM", "above_sigma_one", 100)

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, db.Warehouse,
		registry(t, map[string]string{"Tr1": checks.ThresholdSup10450}))

	report, err := runner.Diagnose(context.Background(), "p1", "F")
	require.NoError(t, err)
	assert.Empty(t, report.Chains)
	require.Len(t, report.Correlation.Checked, 1)
	assert.False(t, report.Correlation.Checked[0].Confirmed())
}

func TestDiagnose_OnlyTrueBranchResolves(t *testing.T) {
	store := graphOf(
		edge("F", ontology.RelHasRootCause, "R1"),
		edge("F", ontology.RelHasRootCause, "R2"),
		edge("R1", ontology.RelIsTriggeredBy, "Tr1"),
		edge("R2", ontology.RelIsTriggeredBy, "Tr2"),
		edge("Tr1", ontology.RelConsume, "LPCAL"),
		edge("Tr2", ontology.RelConsume, "SPCAL"),
	)
	db := warehousetest.Open(t)
	db.PumpCalibration(true, "p1", "Pass")
	db.PumpCalibration(false, "p1", "Fail")

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: store}, db.Warehouse,
		registry(t, map[string]string{"Tr1": checks.LargePump, "Tr2": checks.SmallPump}))

	report, err := runner.Diagnose(context.Background(), "p1", "F")
	require.NoError(t, err)
	assert.Equal(t, []diagnosis.RootCauseChain{{RootCause: "R2", Trigger: "Tr2", DataChannel: "SPCAL"}}, report.Chains)
}

func TestDiagnose_UnmappedTriggerIsSkipped(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := diagnosis.NewMetrics(reg)
	db := warehousetest.Open(t)

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, db.Warehouse,
		checks.NewRegistry(), diagnosis.WithMetrics(metrics))

	report, err := runner.Diagnose(context.Background(), "p1", "F")
	require.NoError(t, err)

	assert.Empty(t, report.Chains)
	assert.Empty(t, report.Correlation.Checked)
	assert.Equal(t, 0, report.Executed)
	assert.Equal(t, []string{"Tr1"}, report.Unmapped)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnmappedTriggers.WithLabelValues("Tr1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("ok")))
}

func TestRunDiagnostics_ConnectionErrorSurfacesFirst(t *testing.T) {
	store := singleChain()
	runner := diagnosis.NewRunner(ontology.StaticSource{Store: store}, failingConns{}, checks.NewRegistry())

	d, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, diagnosis.ErrConnectionUnavailable)
	assert.Zero(t, store.calls)
}

func TestRunDiagnostics_NoWarehouse(t *testing.T) {
	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, nil, checks.NewRegistry())

	_, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	assert.ErrorIs(t, err, diagnosis.ErrConnectionUnavailable)
}

func TestRunDiagnostics_GraphError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := diagnosis.NewMetrics(reg)
	db := warehousetest.Open(t)
	store := singleChain()
	store.err = errors.New("graph unavailable")

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: store}, db.Warehouse,
		checks.NewRegistry(), diagnosis.WithMetrics(metrics))

	d, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, diagnosis.ErrGraphQuery)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("graph_error")))
}

func TestRunDiagnostics_NoGraphLoaded(t *testing.T) {
	db := warehousetest.Open(t)
	runner := diagnosis.NewRunner(ontology.StaticSource{}, db.Warehouse, checks.NewRegistry())

	_, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	assert.ErrorIs(t, err, diagnosis.ErrGraphQuery)
}

func TestRunDiagnostics_CheckError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := diagnosis.NewMetrics(reg)
	db := warehousetest.Open(t)

	failing := checks.NewRegistry()
	failing.Register("broken", checks.CheckFunc(func(context.Context, warehouse.Querier, string, string) (bool, error) {
		return false, errors.New("relation does not exist")
	}))
	require.NoError(t, failing.Bind("Tr1", "broken"))

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, db.Warehouse,
		failing, diagnosis.WithMetrics(metrics))

	d, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	assert.Nil(t, d)
	require.ErrorIs(t, err, diagnosis.ErrCheckExecution)

	var ce *diagnosis.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Tr1", ce.Trigger)
	assert.Equal(t, "MCDIGVLTFM", ce.Channel)
	assert.Equal(t, "broken", ce.Check)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CheckEvaluations.WithLabelValues("broken", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("check_error")))
}

func TestRunDiagnostics_MaxDepthZero(t *testing.T) {
	db := warehousetest.Open(t)
	store := singleChain()

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: store}, db.Warehouse,
		checks.NewRegistry(), diagnosis.WithMaxDepth(0))

	d, err := runner.RunDiagnostics(context.Background(), "p1", "F")
	require.NoError(t, err)
	assert.Zero(t, store.calls)
	assert.Zero(t, d.Depths.Len())
}

func TestDiagnose_TurtleGraph(t *testing.T) {
	store, err := ontology.LoadTurtle("../ontology/testdata/troubleshooting.ttl", ontology.DefaultNamespace)
	require.NoError(t, err)

	db := warehousetest.Open(t)
	db.LimitCheck("p1", "MCDIGVLTFM", "above_sigma_one", 6000)
	db.LimitCheck("p1", "MCDIGVLTFM", "below_sigma_one", 6000)
	db.PumpCalibration(true, "p1", "Fail")

	runner := diagnosis.NewRunner(ontology.StaticSource{Store: store}, db.Warehouse,
		registry(t, map[string]string{"FNFM Master Controller Digital Voltage": checks.ThresholdSup10450}))

	report, err := runner.Diagnose(context.Background(), "p1", "FNFM No Flow")
	require.NoError(t, err)

	assert.Equal(t, []diagnosis.RootCauseChain{
		{RootCause: "Master controller fault", Trigger: "FNFM Master Controller Digital Voltage", DataChannel: "MCDIGVLTFM"},
		{RootCause: "Pump calibration drift", Trigger: "FNFM Large pump calibration check", DataChannel: "LPCAL"},
	}, report.Chains)
	assert.Equal(t, 2, report.Executed)
	assert.Empty(t, report.Unmapped)
}

func TestRunner_FailureLabels(t *testing.T) {
	runner := diagnosis.NewRunner(ontology.StaticSource{Store: singleChain()}, nil, checks.NewRegistry())

	labels, err := runner.FailureLabels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"F"}, labels)

	_, err = diagnosis.NewRunner(ontology.StaticSource{}, nil, checks.NewRegistry()).FailureLabels(context.Background())
	assert.ErrorIs(t, err, diagnosis.ErrGraphQuery)
}
