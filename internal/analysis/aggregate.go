package analysis

import (
	"sort"

	"caselens/domain/core"
	"caselens/domain/table"
)

// CategoryCount is one row of an aggregation result.
type CategoryCount struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AggregationResult holds category counts over distinct case keys.
// Count is the number of distinct key-column values per category, not
// the raw row count: after list-expansion one case can contribute to
// several categories (a deliberate fan-out), but never twice to the
// same one. Percentages are taken over the result's own total, and sum
// to 100 whenever the input is non-empty.
type AggregationResult struct {
	Column string          `json:"column"`
	Rows   []CategoryCount `json:"rows"`
	Total  int             `json:"total"`
}

// Aggregate counts distinct keyColumn values per category of
// categoryColumn. Nulls and placeholder tokens are folded into the
// canonical "No Value" category before grouping. Empty input yields an
// empty result with zero percentages, never an error.
func Aggregate(t *table.Table, categoryColumn, keyColumn string) (*AggregationResult, error) {
	catIdx, ok := t.ColumnIndex(categoryColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(categoryColumn)
	}
	keyIdx, ok := t.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}

	keysPerCategory := make(map[string]map[string]struct{})
	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		category := CategoryLabel(row[catIdx])
		key := row[keyIdx].String()
		set, ok := keysPerCategory[category]
		if !ok {
			set = make(map[string]struct{})
			keysPerCategory[category] = set
		}
		set[key] = struct{}{}
	}

	result := &AggregationResult{Column: categoryColumn, Rows: []CategoryCount{}}
	for category, keys := range keysPerCategory {
		result.Rows = append(result.Rows, CategoryCount{Category: category, Count: len(keys)})
		result.Total += len(keys)
	}
	if result.Total > 0 {
		for i := range result.Rows {
			result.Rows[i].Percentage = float64(result.Rows[i].Count) / float64(result.Total) * 100
		}
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		if result.Rows[i].Count != result.Rows[j].Count {
			return result.Rows[i].Count > result.Rows[j].Count
		}
		return result.Rows[i].Category < result.Rows[j].Category
	})
	return result, nil
}

// TopN returns the first n rows of the result (already sorted by count
// descending). Truncation is a presentation decision; the aggregator
// itself never truncates.
func (r *AggregationResult) TopN(n int) []CategoryCount {
	if n >= len(r.Rows) {
		return r.Rows
	}
	return r.Rows[:n]
}

// CandidateColumns lists the columns usable for contingency tables:
// hashable (no raw list cells) and at most maxCardinality distinct
// values. High-cardinality and list columns are excluded, not errors.
func CandidateColumns(t *table.Table, maxCardinality int) []string {
	var out []string
	for _, col := range t.Columns() {
		distinct, hashable, err := t.DistinctCount(col)
		if err != nil || !hashable {
			continue
		}
		if distinct <= maxCardinality {
			out = append(out, col)
		}
	}
	return out
}
