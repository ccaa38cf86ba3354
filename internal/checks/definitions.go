package checks

import "github.com/moolen/troubleshooter/internal/warehouse"

// Check names
const (
	ThresholdSup10450 = "threshold_sup_10450"
	ThresholdSup12000 = "threshold_sup_12000"
	ThresholdSup5000  = "threshold_sup_5000"
	DiscreteSup10     = "discrete_sup_10"
	DiscreteSup20     = "discrete_sup_20"
	MCRTErrFMCheck    = "mcrterrfm_check"
	LimitCheck        = "limit_check"
	StatusCheck       = "status_check"
	LargePump         = "large_pump"
	SmallPump         = "small_pump"
	MTErrStaFMCheck   = "mterrstafm_check"
)

// Kind selects how a definition decides
type Kind int

const (
	// Threshold sums a column and compares it strictly against a threshold
	Threshold Kind = iota
	// Existence is true when any row matches
	Existence
)

// Filter restricts a column to one value, or to a list of values
type Filter struct {
	Column string
	Values []string
}

// Eq is a single-value filter
func Eq(column, value string) Filter {
	return Filter{Column: column, Values: []string{value}}
}

// In is a list-membership filter
func In(column string, values ...string) Filter {
	return Filter{Column: column, Values: values}
}

// Definition describes a check declaratively
type Definition struct {
	Name  string
	Kind  Kind
	Table string // logical table key, see warehouse.Tables

	// Sum is the summed column for Threshold checks
	Sum string
	// Extra aggregates selected alongside the sum
	Extra []string

	Filters []Filter

	// ChannelColumn is compared with the consumed channel; empty for fixed-channel checks
	ChannelColumn string

	Threshold float64
	// Truncate coerces the aggregate to an integer before comparing
	Truncate bool
}

var sigmaMetrics = In("metric_name", "above_sigma_one", "below_sigma_one")

// Definitions returns the built-in checks
func Definitions() []Definition {
	return []Definition{
		{
			Name:      ThresholdSup10450,
			Kind:      Threshold,
			Table:     warehouse.TableLimitCheckPerJob,
			Sum:       "error_count",
			Filters:   []Filter{Eq("xcol", "MCDIGVLTFM"), sigmaMetrics},
			Threshold: 10450,
		},
		{
			Name:      ThresholdSup12000,
			Kind:      Threshold,
			Table:     warehouse.TableLimitCheckPerJob,
			Sum:       "error_count",
			Filters:   []Filter{Eq("xcol", "MCREFVLTFM")},
			Threshold: 12000,
		},
		{
			Name:      ThresholdSup5000,
			Kind:      Threshold,
			Table:     warehouse.TableLimitCheckPerJob,
			Sum:       "error_count",
			Filters:   []Filter{sigmaMetrics, Eq("xcol", "MCINVLTFM")},
			Threshold: 5000,
		},
		{
			Name:          DiscreteSup10,
			Kind:          Threshold,
			Table:         warehouse.TableStatusWordsPerJob,
			Sum:           "count_error",
			Filters:       []Filter{Eq("xcol_decoded", "FNFM_TripPhaseAFM")},
			ChannelColumn: "xcol",
			Threshold:     10,
			Truncate:      true,
		},
		{
			Name:          DiscreteSup20,
			Kind:          Threshold,
			Table:         warehouse.TableStatusWordsPerJob,
			Sum:           "count_error",
			Filters:       []Filter{Eq("xcol_decoded", "FNFM_EIPUplinkMessageSend")},
			ChannelColumn: "xcol",
			Threshold:     20,
			Truncate:      true,
		},
		{
			Name:  MCRTErrFMCheck,
			Kind:  Threshold,
			Table: warehouse.TableStatusWordsPerJob,
			Sum:   "count_error",
			Filters: []Filter{
				Eq("xcol", "MCRTERRFM"),
				In("xcol_decoded", "FNFM_EIPUplinkMessageSend", "FNFM_EIPITCMessageSend",
					"FNFM_EIPLoopbackMessageSend", "FNFM_EIPDownlinkMessageReceive"),
			},
			Threshold: 1,
			Truncate:  true,
		},
		{
			Name:          LimitCheck,
			Kind:          Threshold,
			Table:         warehouse.TableGenericLimitChecks,
			Sum:           "error_count",
			Extra:         []string{`MIN("min")`, `MAX("max")`},
			ChannelColumn: "xcol",
			Threshold:     0,
			Truncate:      true,
		},
		{
			Name:          StatusCheck,
			Kind:          Existence,
			Table:         warehouse.TableGenericStatusChecks,
			ChannelColumn: "event_name",
		},
		{
			Name:    LargePump,
			Kind:    Existence,
			Table:   warehouse.TableLargePumpCalibration,
			Filters: []Filter{Eq("health_indicator", "Fail")},
		},
		{
			Name:    SmallPump,
			Kind:    Existence,
			Table:   warehouse.TableSmallPumpCalibration,
			Filters: []Filter{Eq("health_indicator", "Fail")},
		},
		{
			Name:  MTErrStaFMCheck,
			Kind:  Threshold,
			Table: warehouse.TableStatusWordsPerJob,
			Sum:   "count_error",
			Filters: []Filter{
				Eq("xcol", "MTERRSTAFM"),
				In("xcol_decoded", "FNFM_FaultIbusFM", "FNFM_TripPhaseBFM", "FNFM_TripPhaseCFM",
					"FNFM_FaultIbFM", "FNFM_FaultIaFM", "FNFM_TripPhaseAFM"),
			},
			Threshold: 1,
			Truncate:  true,
		},
	}
}

// Known reports whether name is a built-in check
func Known(name string) bool {
	for _, d := range Definitions() {
		if d.Name == name {
			return true
		}
	}
	return false
}
