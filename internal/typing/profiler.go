// Package typing implements per-column type detection and coercion over
// the tagged-variant table model: the profiler inspects raw columns and
// reports how convertible they are, the coercer performs the requested
// conversions and keeps a human-readable log of what was lost.
package typing

import (
	"github.com/montanaflynn/stats"

	"caselens/domain/table"
)

const (
	// sampleValueCount is how many non-null values a profile carries.
	sampleValueCount = 5
	// datetimeProbeCap limits the datetime probe to the first N non-null
	// values; full-column date parsing is too slow for wide tables.
	datetimeProbeCap = 100
	// convertibleRate is the success-rate threshold above which a column
	// is flagged as convertible.
	convertibleRate = 70.0
	// numericShortCircuitRate: columns at least this numeric are not also
	// probed as dates.
	numericShortCircuitRate = 50.0
)

// ColumnProfile describes one column's raw representation and how well
// it coerces to numeric or datetime.
type ColumnProfile struct {
	Name                string          `json:"name"`
	OriginalType        string          `json:"original_type"`
	NullCount           int             `json:"null_count"`
	NullPercent         float64         `json:"null_percent"`
	DistinctCount       int             `json:"distinct_count"`
	DistinctUnsupported bool            `json:"distinct_unsupported"`
	SampleValues        []string        `json:"sample_values"`
	NumericRate         float64         `json:"numeric_success_rate"`
	DatetimeRate        float64         `json:"datetime_success_rate"`
	CanBeNumeric        bool            `json:"can_be_numeric"`
	CanBeDatetime       bool            `json:"can_be_datetime"`
	Numeric             *NumericSummary `json:"numeric_summary,omitempty"`
}

// NumericSummary carries basic summary statistics over the values that
// parsed as numbers.
type NumericSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// ProfileTable produces one ColumnProfile per column. Pure read; any
// probe failure degrades to a zero success rate, never an error.
func ProfileTable(t *table.Table) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, t.ColumnCount())
	for _, name := range t.Columns() {
		cells, err := t.Column(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, ProfileColumn(name, cells))
	}
	return profiles
}

// ProfileColumn profiles a single column's cells.
func ProfileColumn(name string, cells []table.Value) ColumnProfile {
	profile := ColumnProfile{
		Name:         name,
		SampleValues: []string{},
	}

	var nonNull []table.Value
	hasList := false
	for _, v := range cells {
		if v.IsMissing {
			profile.NullCount++
			continue
		}
		if v.IsList() {
			hasList = true
		}
		nonNull = append(nonNull, v)
	}
	if len(cells) > 0 {
		profile.NullPercent = float64(profile.NullCount) / float64(len(cells)) * 100
	}

	profile.OriginalType = dominantType(nonNull)

	// Distinct count over non-null values; raw list cells are unhashable
	// and reported as unsupported instead of raising.
	if hasList {
		profile.DistinctUnsupported = true
	} else {
		seen := make(map[string]struct{}, len(nonNull))
		for _, v := range nonNull {
			seen[v.String()] = struct{}{}
		}
		profile.DistinctCount = len(seen)
	}

	for i := 0; i < len(nonNull) && i < sampleValueCount; i++ {
		profile.SampleValues = append(profile.SampleValues, nonNull[i].String())
	}

	if len(nonNull) == 0 {
		return profile
	}

	// Numeric probe over all non-null values.
	var parsed []float64
	for _, v := range nonNull {
		if v.IsNumeric() {
			parsed = append(parsed, v.AsFloat64())
			continue
		}
		if n, ok := ParseNumeric(v.String()); ok {
			parsed = append(parsed, n)
		}
	}
	profile.NumericRate = float64(len(parsed)) / float64(len(nonNull)) * 100
	profile.CanBeNumeric = profile.NumericRate > convertibleRate
	profile.Numeric = summarize(parsed)

	// Datetime probe over a capped sample, and only for columns that are
	// not numeric-looking.
	if profile.NumericRate < numericShortCircuitRate {
		probe := nonNull
		if len(probe) > datetimeProbeCap {
			probe = probe[:datetimeProbeCap]
		}
		success := 0
		for _, v := range probe {
			if v.IsTimestamp() {
				success++
				continue
			}
			if _, ok := ParseDatetime(v.String()); ok {
				success++
			}
		}
		profile.DatetimeRate = float64(success) / float64(len(probe)) * 100
		profile.CanBeDatetime = profile.DatetimeRate > convertibleRate
	}

	return profile
}

func dominantType(nonNull []table.Value) string {
	if len(nonNull) == 0 {
		return string(table.ValueTypeMissing)
	}
	counts := make(map[table.ValueType]int)
	for _, v := range nonNull {
		counts[v.Type]++
	}
	best := nonNull[0].Type
	for vt, n := range counts {
		if n > counts[best] {
			best = vt
		}
	}
	return string(best)
}

func summarize(parsed []float64) *NumericSummary {
	if len(parsed) == 0 {
		return nil
	}
	summary := &NumericSummary{Count: len(parsed)}
	var err error
	if summary.Mean, err = stats.Mean(parsed); err != nil {
		return nil
	}
	if summary.Median, err = stats.Median(parsed); err != nil {
		return nil
	}
	if summary.Min, err = stats.Min(parsed); err != nil {
		return nil
	}
	if summary.Max, err = stats.Max(parsed); err != nil {
		return nil
	}
	if summary.StdDev, err = stats.StandardDeviation(parsed); err != nil {
		return nil
	}
	return summary
}
