// Package ontology answers concept-neighborhood queries against the
// troubleshooting knowledge graph.
//
// The graph relates four domain classes: Failure, RootCause, Trigger and
// DataChannel. A neighborhood query takes a concept label and returns every
// outgoing edge of the nodes carrying that label where either endpoint is one
// of the domain classes, with both endpoints resolved to their labels and the
// relation reduced to its local name. Type assertions are never returned.
//
// Two backends implement Store: MemoryStore, decoded from a Turtle file, and
// FalkorStore, which runs the equivalent Cypher against FalkorDB. CachedStore
// memoizes neighborhoods of either, and Snapshot plus Watcher let the Turtle
// file be replaced while the process runs.
package ontology
