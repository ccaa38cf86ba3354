// Package graph is a thin FalkorDB client used by the FalkorDB ontology
// backend: connect, ping, parameterized Cypher and result conversion.
package graph
