package checks_test

import (
	"context"
	"testing"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/warehouse"
	"github.com/moolen/troubleshooter/internal/warehouse/warehousetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(t *testing.T, name string) checks.Definition {
	t.Helper()
	for _, d := range checks.Definitions() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no definition %s", name)
	return checks.Definition{}
}

func TestBuild_PostgresQueries(t *testing.T) {
	tables := warehouse.DefaultTables()
	tests := []struct {
		name string
		want string
	}{
		{checks.ThresholdSup10450,
			"SELECT SUM(error_count) FROM PRD_RP_PRODUCT_VIEW.FNFM_LIMIT_CHECK_PER_JOB WHERE xcol = $1 AND metric_name = ANY($2) AND partition_id = $3"},
		{checks.ThresholdSup12000,
			"SELECT SUM(error_count) FROM PRD_RP_PRODUCT_VIEW.FNFM_LIMIT_CHECK_PER_JOB WHERE xcol = $1 AND partition_id = $2"},
		{checks.DiscreteSup10,
			"SELECT SUM(count_error) FROM PRD_RP_PRODUCT_VIEW.FNFM_STATUS_WORDS_AGGREGATED_PER_JOB WHERE xcol_decoded = $1 AND xcol = $2 AND partition_id = $3"},
		{checks.LimitCheck,
			`SELECT SUM(error_count), MIN("min"), MAX("max") FROM PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_generic_limit_checks_agg_mavg WHERE xcol = $1 AND partition_id = $2`},
		{checks.StatusCheck,
			"SELECT partition_id FROM PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_generic_status_checks WHERE event_name = $1 AND partition_id = $2"},
		{checks.LargePump,
			"SELECT partition_id FROM PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_large_pump_cal_check WHERE health_indicator = $1 AND partition_id = $2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := checks.Build(definition(t, tt.name), warehouse.Postgres{}, tables)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Query())
			assert.Equal(t, tt.name, c.Name())
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	def := definition(t, checks.LimitCheck)
	_, err := checks.Build(def, warehouse.SQLite{}, warehouse.Tables{})
	assert.Error(t, err)

	def.Sum = ""
	_, err = checks.Build(def, warehouse.SQLite{}, warehouse.DefaultTables())
	assert.Error(t, err)
}

func TestChecks_AgainstWarehouse(t *testing.T) {
	const partition = "11377"

	tests := []struct {
		name    string
		check   string
		channel string
		seed    func(db *warehousetest.DB)
		want    bool
	}{
		{"10450 exceeded", checks.ThresholdSup10450, "", func(db *warehousetest.DB) {
			db.LimitCheck(partition, "MCDIGVLTFM", "above_sigma_one", 10000)
			db.LimitCheck(partition, "MCDIGVLTFM", "below_sigma_one", 5000)
		}, true},
		{"10450 boundary is not exceeded", checks.ThresholdSup10450, "", func(db *warehousetest.DB) {
			db.LimitCheck(partition, "MCDIGVLTFM", "above_sigma_one", 10450)
		}, false},
		{"10450 ignores other metrics", checks.ThresholdSup10450, "", func(db *warehousetest.DB) {
			db.LimitCheck(partition, "MCDIGVLTFM", "above_sigma_two", 20000)
		}, false},
		{"10450 ignores other partitions", checks.ThresholdSup10450, "", func(db *warehousetest.DB) {
			db.LimitCheck("99999", "MCDIGVLTFM", "above_sigma_one", 20000)
		}, false},
		{"12000 has no metric filter", checks.ThresholdSup12000, "", func(db *warehousetest.DB) {
			db.LimitCheck(partition, "MCREFVLTFM", "anything", 12001)
		}, true},
		{"5000 exceeded", checks.ThresholdSup5000, "", func(db *warehousetest.DB) {
			db.LimitCheck(partition, "MCINVLTFM", "below_sigma_one", 5001)
		}, true},
		{"discrete 10 truncates", checks.DiscreteSup10, "MTRSTAT", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MTRSTAT", "FNFM_TripPhaseAFM", 10.9)
		}, false},
		{"discrete 10 exceeded on channel", checks.DiscreteSup10, "MTRSTAT", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MTRSTAT", "FNFM_TripPhaseAFM", 11)
		}, true},
		{"discrete 10 other channel", checks.DiscreteSup10, "OTHER", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MTRSTAT", "FNFM_TripPhaseAFM", 50)
		}, false},
		{"discrete 20 exceeded", checks.DiscreteSup20, "UPLINK", func(db *warehousetest.DB) {
			db.StatusWord(partition, "UPLINK", "FNFM_EIPUplinkMessageSend", 21)
		}, true},
		{"mcrterrfm sums decoded set", checks.MCRTErrFMCheck, "", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MCRTERRFM", "FNFM_EIPITCMessageSend", 1)
			db.StatusWord(partition, "MCRTERRFM", "FNFM_EIPLoopbackMessageSend", 1)
			db.StatusWord(partition, "MCRTERRFM", "FNFM_Unrelated", 100)
		}, true},
		{"mterrstafm at threshold", checks.MTErrStaFMCheck, "", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MTERRSTAFM", "FNFM_FaultIaFM", 1)
		}, false},
		{"mterrstafm exceeded", checks.MTErrStaFMCheck, "", func(db *warehousetest.DB) {
			db.StatusWord(partition, "MTERRSTAFM", "FNFM_FaultIaFM", 1)
			db.StatusWord(partition, "MTERRSTAFM", "FNFM_TripPhaseCFM", 1)
		}, true},
		{"limit check any error", checks.LimitCheck, "MCDIGVLTFM", func(db *warehousetest.DB) {
			db.GenericLimit(partition, "MCDIGVLTFM", 1)
		}, true},
		{"limit check zero errors", checks.LimitCheck, "MCDIGVLTFM", func(db *warehousetest.DB) {
			db.GenericLimit(partition, "MCDIGVLTFM", 0)
		}, false},
		{"limit check null errors", checks.LimitCheck, "MCDIGVLTFM", func(db *warehousetest.DB) {
			db.GenericLimit(partition, "MCDIGVLTFM", nil)
		}, false},
		{"status event present", checks.StatusCheck, "LIN device", func(db *warehousetest.DB) {
			db.StatusEvent(partition, "LIN device")
		}, true},
		{"status event absent", checks.StatusCheck, "CAN device", func(db *warehousetest.DB) {
			db.StatusEvent(partition, "LIN device")
		}, false},
		{"large pump failed", checks.LargePump, "", func(db *warehousetest.DB) {
			db.PumpCalibration(true, partition, "Fail")
		}, true},
		{"large pump passed", checks.LargePump, "", func(db *warehousetest.DB) {
			db.PumpCalibration(true, partition, "Pass")
			db.PumpCalibration(false, partition, "Fail")
		}, false},
		{"small pump failed", checks.SmallPump, "", func(db *warehousetest.DB) {
			db.PumpCalibration(false, partition, "Fail")
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := warehousetest.Open(t)
			tt.seed(db)

			c, err := checks.Build(definition(t, tt.check), db.Dialect(), db.Tables())
			require.NoError(t, err)

			got, err := c.Evaluate(context.Background(), db.MustConn(), partition, tt.channel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThresholdChecks_NullAggregateIsFalse(t *testing.T) {
	db := warehousetest.Open(t)
	conn := db.MustConn()

	for _, def := range checks.Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			c, err := checks.Build(def, db.Dialect(), db.Tables())
			require.NoError(t, err)
			got, err := c.Evaluate(context.Background(), conn, "nothing-here", "CH")
			require.NoError(t, err)
			assert.False(t, got)
		})
	}
}

func TestChecks_QueryErrorsPropagate(t *testing.T) {
	db := warehousetest.Open(t)
	tables := warehousetest.Tables()
	tables[warehouse.TableLimitCheckPerJob] = "missing_table"
	tables[warehouse.TableSmallPumpCalibration] = "missing_table"

	for _, name := range []string{checks.ThresholdSup12000, checks.SmallPump} {
		c, err := checks.Build(definition(t, name), db.Dialect(), tables)
		require.NoError(t, err)
		_, err = c.Evaluate(context.Background(), db.MustConn(), "1", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), name)
	}
}
