// Package analysis implements the grouped-aggregation primitives every
// analytic view is built from: category counts with percentages over
// distinct case keys, two-way contingency tables over raw rows, and
// time-bucketed distinct-key series. All operations take the filtered
// table as an explicit argument and return fresh results; nothing is
// retained between calls.
package analysis

import (
	"strings"

	"caselens/domain/table"
)

// NoValueLabel is the canonical category that absorbs true nulls and
// every placeholder token before grouping, so raw placeholders never
// appear as distinct categories in output.
const NoValueLabel = "No Value"

// placeholderTokens is the fixed set of sentinel strings that mean
// "no value" without being a native null. Matched case-insensitively
// after trimming.
var placeholderTokens = map[string]struct{}{
	"-":         {},
	"":          {},
	"none":      {},
	"<na>":      {},
	"nan":       {},
	"nat":       {},
	"undefined": {},
}

// CategoryLabel canonicalizes a cell into its grouping category. This
// normalization happens before grouping, never after.
func CategoryLabel(v table.Value) string {
	if v.IsMissing {
		return NoValueLabel
	}
	s := v.String()
	if _, ok := placeholderTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return NoValueLabel
	}
	return s
}

// IsPlaceholder reports whether a raw string is one of the configured
// placeholder tokens.
func IsPlaceholder(s string) bool {
	_, ok := placeholderTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// FilterSet maps column names to allowed-value sets. An absent column or
// an empty set means no restriction on that column. The engine treats
// each set as a fresh snapshot per call and never retains it.
type FilterSet map[string]map[string]bool

// ApplyFilters returns a new table containing only the rows whose cells
// match every non-empty allowed-value set. Filter columns absent from
// the table are ignored.
func ApplyFilters(t *table.Table, filters FilterSet) *table.Table {
	type check struct {
		idx     int
		allowed map[string]bool
	}
	var checks []check
	for col, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		if idx, ok := t.ColumnIndex(col); ok {
			checks = append(checks, check{idx: idx, allowed: allowed})
		}
	}
	if len(checks) == 0 {
		return t.Clone()
	}

	out := table.MustNew(t.Columns()...)
	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		keep := true
		for _, c := range checks {
			if !c.allowed[row[c.idx].String()] {
				keep = false
				break
			}
		}
		if keep {
			_ = out.AppendRow(row...)
		}
	}
	return out
}
