package diagnosis

import (
	"context"

	"github.com/moolen/troubleshooter/internal/ontology"
)

// Unbounded disables the walk depth limit
const Unbounded = -1

type frame struct {
	concept string
	depth   int
}

// Walk expands start depth-first. A concept at depth >= maxDepth is neither
// expanded nor marked visited; every other concept is expanded at most once.
// Children are visited in the order the store returns them, with an explicit
// stack instead of recursion. A store error discards the partial map.
func Walk(ctx context.Context, store ontology.Store, start string, maxDepth int) (*DepthMap, error) {
	m := newDepthMap()
	visited := map[string]struct{}{}
	stack := []frame{{concept: start, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if maxDepth != Unbounded && f.depth >= maxDepth {
			continue
		}
		if _, ok := visited[f.concept]; ok {
			continue
		}
		visited[f.concept] = struct{}{}

		triples, err := store.Neighborhood(ctx, f.concept)
		if err != nil {
			return nil, &GraphQueryError{Concept: f.concept, Err: err}
		}
		m.record(f.depth, triples)

		for i := len(triples) - 1; i >= 0; i-- {
			stack = append(stack, frame{concept: triples[i].Object, depth: f.depth + 1})
		}
	}
	return m, nil
}
