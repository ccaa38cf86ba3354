package diagnosis

import (
	"context"
	"errors"
	"testing"

	"github.com/moolen/troubleshooter/internal/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	edges map[string][]Triple
	fail  map[string]error
	calls []string
}

func (s *fakeStore) Neighborhood(_ context.Context, concept string) ([]Triple, error) {
	s.calls = append(s.calls, concept)
	if err := s.fail[concept]; err != nil {
		return nil, err
	}
	return append([]Triple{}, s.edges[concept]...), nil
}

func (s *fakeStore) FailureLabels(context.Context) ([]string, error) {
	return nil, nil
}

func tr(s, p, o string) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

func storeOf(triples ...Triple) *fakeStore {
	s := &fakeStore{edges: map[string][]Triple{}, fail: map[string]error{}}
	for _, t := range triples {
		s.edges[t.Subject] = append(s.edges[t.Subject], t)
	}
	return s
}

func TestWalk_TerminatesOnCycle(t *testing.T) {
	store := storeOf(tr("A", "rel", "B"), tr("B", "rel", "A"))

	m, err := Walk(context.Background(), store, "A", Unbounded)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, store.calls)
	assert.Equal(t, []int{0, 1}, m.Depths())
	assert.Equal(t, []Triple{tr("A", "rel", "B")}, m.At(0))
	assert.Equal(t, []Triple{tr("B", "rel", "A")}, m.At(1))
	assert.Equal(t, 2, m.Len())
}

func TestWalk_PreorderFollowsStoreOrder(t *testing.T) {
	store := storeOf(
		tr("A", "rel", "B"),
		tr("A", "rel", "C"),
		tr("B", "rel", "D"),
	)

	_, err := Walk(context.Background(), store, "A", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "C"}, store.calls)
}

func TestWalk_EmptyBucketsAreRecorded(t *testing.T) {
	store := storeOf(tr("A", "rel", "B"))

	m, err := Walk(context.Background(), store, "A", Unbounded)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, m.Depths())
	assert.Empty(t, m.At(1))
	assert.Contains(t, m.Levels(), 1)
}

func TestWalk_MaxDepth(t *testing.T) {
	chain := storeOf(tr("A", "rel", "B"), tr("B", "rel", "C"), tr("C", "rel", "D"))

	tests := []struct {
		name     string
		maxDepth int
		calls    []string
		depths   []int
	}{
		{name: "zero expands nothing", maxDepth: 0, calls: nil, depths: []int{}},
		{name: "one expands the start", maxDepth: 1, calls: []string{"A"}, depths: []int{0}},
		{name: "two", maxDepth: 2, calls: []string{"A", "B"}, depths: []int{0, 1}},
		{name: "unbounded", maxDepth: Unbounded, calls: []string{"A", "B", "C", "D"}, depths: []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain.calls = nil
			m, err := Walk(context.Background(), chain, "A", tt.maxDepth)
			require.NoError(t, err)
			assert.Equal(t, tt.calls, chain.calls)
			assert.Equal(t, tt.depths, m.Depths())
		})
	}
}

func TestWalk_DepthLimitedConceptIsNotMarkedVisited(t *testing.T) {
	// C is first reached at depth 2 under B, then again at depth 1 from A.
	store := storeOf(
		tr("A", "rel", "B"),
		tr("A", "rel", "C"),
		tr("B", "rel", "C"),
		tr("C", "rel", "D"),
	)

	m, err := Walk(context.Background(), store, "A", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, store.calls)
	assert.Equal(t, []Triple{tr("B", "rel", "C"), tr("C", "rel", "D")}, m.At(1))
}

func TestWalk_DepthMonotonicity(t *testing.T) {
	store := storeOf(
		tr("F", ontology.RelHasRootCause, "R1"),
		tr("F", ontology.RelHasRootCause, "R2"),
		tr("R1", ontology.RelIsTriggeredBy, "T1"),
		tr("R2", ontology.RelIsTriggeredBy, "T1"),
		tr("T1", ontology.RelConsume, "C1"),
		tr("C1", "relatedTo", "F"),
	)

	previous := -1
	for depth := 0; depth <= 5; depth++ {
		m, err := Walk(context.Background(), store, "F", depth)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.Len(), previous, "depth %d", depth)
		previous = m.Len()
	}

	unbounded, err := Walk(context.Background(), store, "F", Unbounded)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, unbounded.Len(), previous)
}

func TestWalk_StoreErrorDiscardsMap(t *testing.T) {
	store := storeOf(tr("A", "rel", "B"), tr("B", "rel", "C"))
	store.fail["B"] = errors.New("connection reset")

	m, err := Walk(context.Background(), store, "A", Unbounded)
	assert.Nil(t, m)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGraphQuery)

	var gqe *GraphQueryError
	require.ErrorAs(t, err, &gqe)
	assert.Equal(t, "B", gqe.Concept)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWalk_UnknownConcept(t *testing.T) {
	m, err := Walk(context.Background(), storeOf(), "missing", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, m.Depths())
	assert.Equal(t, 0, m.Len())
}
