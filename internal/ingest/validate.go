package ingest

import (
	"math"
	"sort"

	"github.com/lox/vicenergy/internal/models"
)

const (
	FlagTempOutOfRange   = "temp_out_of_range"
	FlagTempInverted     = "temp_min_above_max"
	FlagDemandNegative   = "demand_negative"
	FlagSolarNegative    = "solar_negative"
	FlagRainfallNegative = "rainfall_negative"
	FlagMissingValue     = "missing_value"
)

// ValidateRecord returns quality flags for r. Flags are informational; the
// record is still loaded.
func ValidateRecord(r models.Record) []string {
	var flags []string

	for _, v := range []float64{r.MaxTemperature, r.MinTemperature} {
		if !math.IsNaN(v) && (v < -10 || v > 50) {
			flags = append(flags, FlagTempOutOfRange)
			break
		}
	}

	if !math.IsNaN(r.MaxTemperature) && !math.IsNaN(r.MinTemperature) && r.MinTemperature > r.MaxTemperature {
		flags = append(flags, FlagTempInverted)
	}

	if !math.IsNaN(r.Demand) && r.Demand < 0 {
		flags = append(flags, FlagDemandNegative)
	}

	if !math.IsNaN(r.SolarExposure) && r.SolarExposure < 0 {
		flags = append(flags, FlagSolarNegative)
	}

	if !math.IsNaN(r.Rainfall) && r.Rainfall < 0 {
		flags = append(flags, FlagRainfallNegative)
	}

	for _, v := range []float64{r.Demand, r.RRP, r.SolarExposure, r.Rainfall, r.MaxTemperature, r.MinTemperature} {
		if math.IsNaN(v) {
			flags = append(flags, FlagMissingValue)
			break
		}
	}

	return flags
}

// FlagCounts tallies ValidateRecord over recs.
func FlagCounts(recs []models.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range recs {
		for _, f := range ValidateRecord(r) {
			counts[f]++
		}
	}
	return counts
}

// SortedFlags returns the keys of counts in a stable order for logging.
func SortedFlags(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
