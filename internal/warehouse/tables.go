package warehouse

import (
	"fmt"
	"regexp"
	"sort"
)

// Logical table keys
const (
	TableLimitCheckPerJob     = "limit_check_per_job"
	TableStatusWordsPerJob    = "status_words_per_job"
	TableGenericLimitChecks   = "generic_limit_checks"
	TableGenericStatusChecks  = "generic_status_checks"
	TableLargePumpCalibration = "large_pump_cal_check"
	TableSmallPumpCalibration = "small_pump_cal_check"
	TableFleetMetadata        = "fleet_metadata"
)

// Tables maps logical table keys to qualified warehouse names
type Tables map[string]string

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DefaultTables returns the production view names
func DefaultTables() Tables {
	return Tables{
		TableLimitCheckPerJob:     "PRD_RP_PRODUCT_VIEW.FNFM_LIMIT_CHECK_PER_JOB",
		TableStatusWordsPerJob:    "PRD_RP_PRODUCT_VIEW.FNFM_STATUS_WORDS_AGGREGATED_PER_JOB",
		TableGenericLimitChecks:   "PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_generic_limit_checks_agg_mavg",
		TableGenericStatusChecks:  "PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_generic_status_checks",
		TableLargePumpCalibration: "PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_large_pump_cal_check",
		TableSmallPumpCalibration: "PRD_GLBL_DATA_PRODUCTS.FNFM_fleet_timeseries_small_pump_cal_check",
		TableFleetMetadata:        "PRD_RP_PRODUCT_VIEW.FNFM_FLEET_METADATA",
	}
}

// WithOverrides returns the defaults with the given keys replaced
func WithOverrides(overrides map[string]string) Tables {
	t := DefaultTables()
	for k, v := range overrides {
		t[k] = v
	}
	return t
}

// Name returns the qualified name for a logical key
func (t Tables) Name(key string) string {
	return t[key]
}

// Validate rejects unknown keys and names that are not plain identifiers.
// Table names are interpolated into SQL, so only [schema.]name is accepted.
func (t Tables) Validate() error {
	known := DefaultTables()
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("unknown warehouse table key %q", k)
		}
		if !identifierPattern.MatchString(t[k]) {
			return fmt.Errorf("invalid warehouse table name %q for %s", t[k], k)
		}
	}
	for k := range known {
		if _, ok := t[k]; !ok {
			return fmt.Errorf("warehouse table %s is not configured", k)
		}
	}
	return nil
}
