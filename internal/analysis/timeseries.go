package analysis

import (
	"fmt"
	"sort"
	"time"

	"caselens/domain/core"
	"caselens/domain/table"
)

// Granularity is the time-bucket width used to truncate timestamps
// before grouping.
type Granularity string

const (
	GranularityYear    Granularity = "year"
	GranularityQuarter Granularity = "quarter"
	GranularityMonth   Granularity = "month"
	GranularityWeek    Granularity = "week"
	GranularityDay     Granularity = "day"
)

// ParseGranularity validates a caller-supplied granularity token.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityYear, GranularityQuarter, GranularityMonth, GranularityWeek, GranularityDay:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("%w: unknown granularity %q", core.ErrPrecondition, s)
}

// TotalSegment names the single series produced when no segmentation is
// requested.
const TotalSegment = "total"

// TimePoint is one (bucket, segment) row of a time series result.
type TimePoint struct {
	PeriodStart time.Time `json:"period_start"`
	Segment     string    `json:"segment"`
	Count       int       `json:"count"`
}

// TimeSeriesResult holds distinct-key counts per time bucket, sorted
// chronologically ascending (segment order within a bucket is lexical,
// not contractual).
type TimeSeriesResult struct {
	DateColumn  string      `json:"date_column"`
	Granularity Granularity `json:"granularity"`
	Points      []TimePoint `json:"points"`
}

// Bucket groups rows by dateColumn truncated to the granularity and
// counts distinct keyColumn values per bucket - the same distinct-key
// semantics as Aggregate. Rows with a null date, a non-timestamp date
// cell, or (when segmenting) a null segment are excluded; there is no
// null bucket. Empty input yields an empty result.
func Bucket(t *table.Table, dateColumn, keyColumn string, granularity Granularity, segmentColumn string) (*TimeSeriesResult, error) {
	dateIdx, ok := t.ColumnIndex(dateColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(dateColumn)
	}
	keyIdx, ok := t.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}
	segmented := segmentColumn != ""
	segIdx := -1
	if segmented {
		if segIdx, ok = t.ColumnIndex(segmentColumn); !ok {
			return nil, core.NewColumnNotFoundError(segmentColumn)
		}
	}
	if _, err := ParseGranularity(string(granularity)); err != nil {
		return nil, err
	}

	type bucketKey struct {
		period  time.Time
		segment string
	}
	keysPerBucket := make(map[bucketKey]map[string]struct{})
	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		dateCell := row[dateIdx]
		if !dateCell.IsTimestamp() {
			continue
		}
		segment := TotalSegment
		if segmented {
			segCell := row[segIdx]
			if segCell.IsMissing {
				continue
			}
			segment = CategoryLabel(segCell)
		}
		bk := bucketKey{period: Truncate(dateCell.AsTime(), granularity), segment: segment}
		set, ok := keysPerBucket[bk]
		if !ok {
			set = make(map[string]struct{})
			keysPerBucket[bk] = set
		}
		set[row[keyIdx].String()] = struct{}{}
	}

	result := &TimeSeriesResult{
		DateColumn:  dateColumn,
		Granularity: granularity,
		Points:      make([]TimePoint, 0, len(keysPerBucket)),
	}
	for bk, keys := range keysPerBucket {
		result.Points = append(result.Points, TimePoint{
			PeriodStart: bk.period,
			Segment:     bk.segment,
			Count:       len(keys),
		})
	}
	sort.Slice(result.Points, func(i, j int) bool {
		a, b := result.Points[i], result.Points[j]
		if !a.PeriodStart.Equal(b.PeriodStart) {
			return a.PeriodStart.Before(b.PeriodStart)
		}
		return a.Segment < b.Segment
	})
	return result, nil
}

// Truncate aligns a timestamp to the start of its calendar bucket.
// Weeks use ISO semantics and start on Monday; quarters are calendar
// quarters.
func Truncate(t time.Time, granularity Granularity) time.Time {
	year, month, day := t.Date()
	switch granularity {
	case GranularityYear:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location())
	case GranularityQuarter:
		quarterStart := time.Month(((int(month)-1)/3)*3 + 1)
		return time.Date(year, quarterStart, 1, 0, 0, 0, 0, t.Location())
	case GranularityMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	case GranularityWeek:
		midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
		weekday := int(midnight.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the week started the previous Monday
		}
		return midnight.AddDate(0, 0, -(weekday - 1))
	default: // GranularityDay
		return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	}
}
