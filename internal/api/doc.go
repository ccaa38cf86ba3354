// Package api serves the troubleshooter over HTTP: diagnosis runs, the failure
// catalog, fleet metadata, single-check invocation, health and Prometheus
// metrics, and the MCP streamable endpoint.
package api
