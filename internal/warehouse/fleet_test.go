package warehouse_test

import (
	"context"
	"testing"

	"github.com/moolen/troubleshooter/internal/warehouse"
	"github.com/moolen/troubleshooter/internal/warehouse/warehousetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFleet(t *testing.T) *warehousetest.DB {
	db := warehousetest.Open(t)
	db.Job("11377", "SN123", "JN456", "2025-08-11 10:00:00.000000")
	db.Job("11378", "SN123", "JN457", "2025-08-12 09:30:00.000000")
	db.Job("11379", "SN009", "JN456", "2025-09-01 00:00:00.000000")
	db.Job("11380", nil, "JN999", nil)
	db.Job("11381", "SN123", "JN456", "2025-08-11 10:00:00.000000")
	return db
}

func TestFleet_Choices(t *testing.T) {
	db := seedFleet(t)
	fleet := db.Fleet()
	ctx := context.Background()

	tests := []struct {
		name   string
		field  string
		parent string
		want   []string
	}{
		{"serial numbers sorted with NaN", warehouse.FieldSerialNumber, "", []string{"NaN", "SN009", "SN123"}},
		{"jobs for serial", warehouse.FieldJobNumber, "SN123", []string{"JN456", "JN457"}},
		{"job starts filter on job number only", warehouse.FieldJobStart, "JN456",
			[]string{"2025-08-11 10:00:00.000000", "2025-09-01 00:00:00.000000"}},
		{"null job start", warehouse.FieldJobStart, "JN999", []string{"NaN"}},
		{"missing parent", warehouse.FieldJobNumber, "", []string{}},
		{"unknown field", "color", "x", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fleet.Choices(ctx, tt.field, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFleet_LookupPartition(t *testing.T) {
	db := seedFleet(t)
	fleet := db.Fleet()
	ctx := context.Background()

	id, found, err := fleet.LookupPartition(ctx, "SN123", "JN456", "2025-08-11 10:00:00.000000")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "11377", id, "first matching row wins")

	id, found, err = fleet.LookupPartition(ctx, "SN123", "JN456", "2025-08-11")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
}

func TestFleet_LookupPartitionIsParameterized(t *testing.T) {
	db := seedFleet(t)

	_, found, err := db.Fleet().LookupPartition(context.Background(), "SN123' OR '1'='1", "JN456", "x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWarehouse_ConnAndPing(t *testing.T) {
	db := warehousetest.Open(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))
	conn, err := db.Warehouse.Conn(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	var nilWarehouse *warehouse.Warehouse
	_, err = nilWarehouse.Conn(ctx)
	assert.ErrorIs(t, err, warehouse.ErrNotConnected)
	assert.ErrorIs(t, nilWarehouse.Ping(ctx), warehouse.ErrNotConnected)
}

func TestOpen_Errors(t *testing.T) {
	_, err := warehouse.Open(context.Background(), warehouse.Options{Driver: "teradata"})
	assert.Error(t, err)

	_, err = warehouse.Open(context.Background(), warehouse.Options{
		Driver: "sqlite",
		DSN:    t.TempDir() + "/x.db",
		Tables: warehouse.Tables{"bogus": "x"},
	})
	assert.Error(t, err)
}

func TestNormalizeJobStart(t *testing.T) {
	got, err := warehouse.NormalizeJobStart("2025-08-11 10:00:00.123456")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-11 10:00:00.123456", got)

	got, err = warehouse.NormalizeJobStart("2025-08-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-11 00:00:00.000000", got)

	_, err = warehouse.NormalizeJobStart("  ")
	assert.Error(t, err)
}
