// Package checks implements the diagnostic predicates that run against the
// warehouse and the registry that binds knowledge-graph trigger labels to them.
package checks

import (
	"context"
	"errors"

	"github.com/moolen/troubleshooter/internal/warehouse"
)

// ErrUnknownCheck is returned when a check name is not registered
var ErrUnknownCheck = errors.New("unknown check")

// Check is one diagnostic predicate. channel is the consumed data channel
// label; checks bound to a fixed channel ignore it. Query errors are returned,
// never folded into false.
type Check interface {
	Evaluate(ctx context.Context, q warehouse.Querier, partitionID, channel string) (bool, error)
}

// CheckFunc adapts a function to Check
type CheckFunc func(ctx context.Context, q warehouse.Querier, partitionID, channel string) (bool, error)

// Evaluate calls f
func (f CheckFunc) Evaluate(ctx context.Context, q warehouse.Querier, partitionID, channel string) (bool, error) {
	return f(ctx, q, partitionID, channel)
}
