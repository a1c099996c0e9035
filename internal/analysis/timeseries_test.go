package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/domain/core"
	"caselens/domain/table"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timeSeriesInput(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew("Caso Id", "Data Fato", "Unidade")
	rows := []struct {
		id   string
		date table.Value
		unit string
	}{
		{"A", table.NewTimestampValue(day(2024, time.January, 5)), "Norte"},
		{"B", table.NewTimestampValue(day(2024, time.January, 20)), "Sul"},
		{"C", table.NewTimestampValue(day(2024, time.February, 1)), "Norte"},
	}
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow(
			table.NewStringValue(r.id),
			r.date,
			table.NewStringValue(r.unit),
		))
	}
	return tbl
}

func TestBucketMonthly(t *testing.T) {
	res, err := Bucket(timeSeriesInput(t), "Data Fato", "Caso Id", GranularityMonth, "")
	require.NoError(t, err)

	require.Len(t, res.Points, 2)
	assert.Equal(t, day(2024, time.January, 1), res.Points[0].PeriodStart)
	assert.Equal(t, 2, res.Points[0].Count)
	assert.Equal(t, TotalSegment, res.Points[0].Segment)
	assert.Equal(t, day(2024, time.February, 1), res.Points[1].PeriodStart)
	assert.Equal(t, 1, res.Points[1].Count)
}

func TestBucketExcludesNullDates(t *testing.T) {
	tbl := timeSeriesInput(t)
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("D"),
		table.NewMissingValue(),
		table.NewStringValue("Norte"),
	))
	// A date the coercer could not parse stays a string and is skipped.
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("E"),
		table.NewStringValue("not a date"),
		table.NewStringValue("Norte"),
	))

	res, err := Bucket(tbl, "Data Fato", "Caso Id", GranularityMonth, "")
	require.NoError(t, err)
	total := 0
	for _, p := range res.Points {
		total += p.Count
	}
	assert.Equal(t, 3, total)
}

func TestBucketSegmented(t *testing.T) {
	res, err := Bucket(timeSeriesInput(t), "Data Fato", "Caso Id", GranularityMonth, "Unidade")
	require.NoError(t, err)

	require.Len(t, res.Points, 3)
	assert.Equal(t, "Norte", res.Points[0].Segment)
	assert.Equal(t, "Sul", res.Points[1].Segment)
	assert.Equal(t, day(2024, time.January, 1), res.Points[0].PeriodStart)
	assert.Equal(t, day(2024, time.February, 1), res.Points[2].PeriodStart)
	for _, p := range res.Points {
		assert.Equal(t, 1, p.Count)
	}
}

func TestBucketCountsDistinctKeys(t *testing.T) {
	tbl := table.MustNew("Caso Id", "Data Fato")
	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.AppendRow(
			table.NewStringValue("A"),
			table.NewTimestampValue(day(2024, time.March, 10)),
		))
	}
	res, err := Bucket(tbl, "Data Fato", "Caso Id", GranularityMonth, "")
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 1, res.Points[0].Count)
}

func TestBucketUnknownGranularity(t *testing.T) {
	_, err := Bucket(timeSeriesInput(t), "Data Fato", "Caso Id", Granularity("decade"), "")
	require.Error(t, err)
	assert.True(t, core.IsPreconditionError(err))

	g, err := ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, GranularityWeek, g)
}

func TestTruncate(t *testing.T) {
	ts := time.Date(2024, time.August, 15, 13, 45, 0, 0, time.UTC) // a Thursday

	assert.Equal(t, day(2024, time.January, 1), Truncate(ts, GranularityYear))
	assert.Equal(t, day(2024, time.July, 1), Truncate(ts, GranularityQuarter))
	assert.Equal(t, day(2024, time.August, 1), Truncate(ts, GranularityMonth))
	assert.Equal(t, day(2024, time.August, 12), Truncate(ts, GranularityWeek))
	assert.Equal(t, day(2024, time.August, 15), Truncate(ts, GranularityDay))

	// Sunday rolls back to the previous Monday.
	sunday := day(2024, time.August, 18)
	assert.Equal(t, day(2024, time.August, 12), Truncate(sunday, GranularityWeek))

	// Q1 and Q4 boundaries.
	assert.Equal(t, day(2024, time.January, 1), Truncate(day(2024, time.March, 31), GranularityQuarter))
	assert.Equal(t, day(2024, time.October, 1), Truncate(day(2024, time.December, 1), GranularityQuarter))
}
