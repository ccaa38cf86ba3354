// Package warehousetest provides a file-backed SQLite warehouse seeded with
// the schema of the production views, for tests.
package warehousetest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moolen/troubleshooter/internal/warehouse"
	"github.com/stretchr/testify/require"
)

// Tables returns unqualified table names SQLite can create
func Tables() warehouse.Tables {
	return warehouse.Tables{
		warehouse.TableLimitCheckPerJob:     "limit_check_per_job",
		warehouse.TableStatusWordsPerJob:    "status_words_per_job",
		warehouse.TableGenericLimitChecks:   "generic_limit_checks",
		warehouse.TableGenericStatusChecks:  "generic_status_checks",
		warehouse.TableLargePumpCalibration: "large_pump_cal_check",
		warehouse.TableSmallPumpCalibration: "small_pump_cal_check",
		warehouse.TableFleetMetadata:        "fleet_metadata",
	}
}

var schema = []string{
	`CREATE TABLE limit_check_per_job (partition_id TEXT, xcol TEXT, metric_name TEXT, error_count INTEGER)`,
	`CREATE TABLE status_words_per_job (partition_id TEXT, xcol TEXT, xcol_decoded TEXT, count_error REAL)`,
	`CREATE TABLE generic_limit_checks (partition_id TEXT, xcol TEXT, error_count REAL, "min" REAL, "max" REAL)`,
	`CREATE TABLE generic_status_checks (partition_id TEXT, event_name TEXT)`,
	`CREATE TABLE large_pump_cal_check (partition_id TEXT, health_indicator TEXT)`,
	`CREATE TABLE small_pump_cal_check (partition_id TEXT, health_indicator TEXT)`,
	`CREATE TABLE fleet_metadata (partition_id TEXT, serial_number TEXT, job_number TEXT, job_start TEXT)`,
}

// DB is a seeded warehouse under test
type DB struct {
	*warehouse.Warehouse
	t *testing.T
}

// Open creates an empty warehouse in t.TempDir()
func Open(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	w, err := warehouse.Open(context.Background(), warehouse.Options{
		Driver: "sqlite",
		DSN:    dsn,
		Tables: Tables(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for _, stmt := range schema {
		_, err := w.DB().Exec(stmt)
		require.NoError(t, err)
	}
	return &DB{Warehouse: w, t: t}
}

// Insert adds one row to table; values are given in column order
func (d *DB) Insert(table string, columns []string, values ...interface{}) {
	d.t.Helper()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quoted, ", "), marks)
	_, err := d.DB().Exec(stmt, values...)
	require.NoError(d.t, err)
}

// LimitCheck adds a per-job limit check row
func (d *DB) LimitCheck(partitionID, xcol, metric string, errorCount int) {
	d.Insert("limit_check_per_job", []string{"partition_id", "xcol", "metric_name", "error_count"},
		partitionID, xcol, metric, errorCount)
}

// StatusWord adds an aggregated status word row
func (d *DB) StatusWord(partitionID, xcol, decoded string, countError float64) {
	d.Insert("status_words_per_job", []string{"partition_id", "xcol", "xcol_decoded", "count_error"},
		partitionID, xcol, decoded, countError)
}

// GenericLimit adds a generic limit check row
func (d *DB) GenericLimit(partitionID, xcol string, errorCount interface{}) {
	d.Insert("generic_limit_checks", []string{"partition_id", "xcol", "error_count", "min", "max"},
		partitionID, xcol, errorCount, 0.0, 1.0)
}

// StatusEvent adds a generic status check event
func (d *DB) StatusEvent(partitionID, event string) {
	d.Insert("generic_status_checks", []string{"partition_id", "event_name"}, partitionID, event)
}

// PumpCalibration adds a pump calibration row to the large or small table
func (d *DB) PumpCalibration(large bool, partitionID, health string) {
	table := "small_pump_cal_check"
	if large {
		table = "large_pump_cal_check"
	}
	d.Insert(table, []string{"partition_id", "health_indicator"}, partitionID, health)
}

// Job adds a fleet metadata row; nil values are stored as NULL
func (d *DB) Job(partitionID interface{}, serialNumber, jobNumber, jobStart interface{}) {
	d.Insert("fleet_metadata", []string{"partition_id", "serial_number", "job_number", "job_start"},
		partitionID, serialNumber, jobNumber, jobStart)
}

// MustConn acquires a connection released at test cleanup
func (d *DB) MustConn() *sql.Conn {
	d.t.Helper()
	conn, err := d.Warehouse.Conn(context.Background())
	require.NoError(d.t, err)
	d.t.Cleanup(func() { _ = conn.Close() })
	return conn
}
