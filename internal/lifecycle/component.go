// Package lifecycle starts and stops long-running components in dependency order.
package lifecycle

import "context"

// Component is a long-running part of the server: the ontology watcher, the
// tracing provider, the HTTP API.
type Component interface {
	// Start must return once the component is ready to serve
	Start(ctx context.Context) error
	// Stop should honour the context deadline
	Stop(ctx context.Context) error
	Name() string
}
