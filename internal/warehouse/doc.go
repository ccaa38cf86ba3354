// Package warehouse owns the connection pool to the time-series data
// warehouse that diagnostic checks query.
//
// A Warehouse wraps a database/sql pool for one of two drivers: "postgres"
// (lib/pq) for the production warehouse and "sqlite" (modernc.org/sqlite)
// for local extracts and tests. Dialect hides the placeholder and
// list-membership syntax that differs between them, and Tables holds the
// qualified names of the warehouse views so deployments can remap them.
//
// Pipeline runs acquire one *sql.Conn through Warehouse.Conn and release it
// when the run ends; everything that issues queries accepts the Querier
// interface so it works with a *sql.Conn, *sql.DB or *sql.Tx alike.
package warehouse
