package ontology

import (
	"context"
	"fmt"

	"github.com/moolen/troubleshooter/internal/graph"
)

// Nodes carry their domain class as a node label and their human-readable
// label as the "label" property; relations are typed by local name.
const (
	neighborhoodQuery = `MATCH (s)-[r]->(o)
WHERE s.label = $concept AND o.label IS NOT NULL
  AND size(labels(s)) > 0 AND size(labels(o)) > 0
  AND (any(l IN labels(s) WHERE l IN $classes) OR any(l IN labels(o) WHERE l IN $classes))
RETURN DISTINCT s.label AS subject, type(r) AS predicate, o.label AS object`

	failureLabelsQuery = `MATCH (f:Failure)
WHERE f.label IS NOT NULL
RETURN DISTINCT f.label AS label
ORDER BY label`
)

// FalkorStore answers neighborhood queries from a FalkorDB graph
type FalkorStore struct {
	client  graph.Client
	timeout int
}

// NewFalkorStore wraps a connected client. timeoutMs bounds each query; 0 uses the server default.
func NewFalkorStore(client graph.Client, timeoutMs int) *FalkorStore {
	return &FalkorStore{client: client, timeout: timeoutMs}
}

// Neighborhood implements Store
func (s *FalkorStore) Neighborhood(ctx context.Context, concept string) ([]Triple, error) {
	classes := make([]interface{}, 0, 4)
	for _, c := range DomainClasses() {
		classes = append(classes, c)
	}
	result, err := s.client.ExecuteQuery(ctx, graph.GraphQuery{
		Query: neighborhoodQuery,
		Parameters: map[string]interface{}{
			"concept": concept,
			"classes": classes,
		},
		Timeout: s.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("neighborhood of %q: %w", concept, err)
	}

	rows, err := result.StringColumns(3)
	if err != nil {
		return nil, fmt.Errorf("neighborhood of %q: %w", concept, err)
	}
	out := make([]Triple, 0, len(rows))
	seen := make(map[Triple]struct{}, len(rows))
	for _, row := range rows {
		t := Triple{Subject: row[0], Predicate: row[1], Object: row[2]}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// FailureLabels implements Store
func (s *FalkorStore) FailureLabels(ctx context.Context) ([]string, error) {
	result, err := s.client.ExecuteQuery(ctx, graph.GraphQuery{Query: failureLabelsQuery, Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("failure labels: %w", err)
	}
	rows, err := result.StringColumns(1)
	if err != nil {
		return nil, fmt.Errorf("failure labels: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row[0])
	}
	return out, nil
}
