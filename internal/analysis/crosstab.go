package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"caselens/domain/core"
	"caselens/domain/table"
)

// MaxCrosstabCardinality caps the distinct values either crosstab axis
// may have; wider tables stop being readable.
const MaxCrosstabCardinality = 50

// CrosstabResult is a two-way contingency table. Cells are raw row
// counts, not distinct-key counts: a crosstab answers "how many rows
// pair these values", while Aggregate answers "how many distinct cases
// have this category". The asymmetry is intentional.
type CrosstabResult struct {
	RowColumn string  `json:"row_column"`
	ColColumn string  `json:"col_column"`
	RowValues []string `json:"row_values"`
	ColValues []string `json:"col_values"`
	Counts    [][]int  `json:"counts"`

	// Chi-squared test of independence over the table, when defined.
	ChiSquare float64 `json:"chi_square"`
	PValue    float64 `json:"p_value"`
	DF        int     `json:"degrees_of_freedom"`
}

// Crosstab builds the contingency table between two categorical columns.
// Both axes are canonicalized ("No Value" absorbs nulls and
// placeholders) and must stay within MaxCrosstabCardinality distinct
// values; violation is signaled as an UnsupportedCardinality error, not
// a crash. Empty input yields an empty table.
func Crosstab(t *table.Table, rowColumn, colColumn string) (*CrosstabResult, error) {
	rowIdx, ok := t.ColumnIndex(rowColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(rowColumn)
	}
	colIdx, ok := t.ColumnIndex(colColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(colColumn)
	}

	counts := make(map[string]map[string]int)
	colSeen := make(map[string]struct{})
	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		rv := CategoryLabel(row[rowIdx])
		cv := CategoryLabel(row[colIdx])
		if counts[rv] == nil {
			counts[rv] = make(map[string]int)
		}
		counts[rv][cv]++
		colSeen[cv] = struct{}{}
	}

	if len(counts) > MaxCrosstabCardinality {
		return nil, core.NewCardinalityError(rowColumn, len(counts), MaxCrosstabCardinality)
	}
	if len(colSeen) > MaxCrosstabCardinality {
		return nil, core.NewCardinalityError(colColumn, len(colSeen), MaxCrosstabCardinality)
	}

	result := &CrosstabResult{
		RowColumn: rowColumn,
		ColColumn: colColumn,
		RowValues: sortedKeys(counts),
		ColValues: make([]string, 0, len(colSeen)),
	}
	for cv := range colSeen {
		result.ColValues = append(result.ColValues, cv)
	}
	sort.Strings(result.ColValues)

	result.Counts = make([][]int, len(result.RowValues))
	for i, rv := range result.RowValues {
		result.Counts[i] = make([]int, len(result.ColValues))
		for j, cv := range result.ColValues {
			result.Counts[i][j] = counts[rv][cv]
		}
	}

	result.chiSquare()
	return result, nil
}

// chiSquare runs the chi-squared independence test over the table.
// Undefined for degenerate shapes (fewer than 2x2, zero margin totals);
// those leave the zero values in place.
func (ct *CrosstabResult) chiSquare() {
	rows, cols := len(ct.RowValues), len(ct.ColValues)
	if rows < 2 || cols < 2 {
		return
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	total := 0.0
	for i := range ct.Counts {
		for j, n := range ct.Counts[i] {
			rowTotals[i] += float64(n)
			colTotals[j] += float64(n)
			total += float64(n)
		}
	}
	if total == 0 {
		return
	}

	statistic := 0.0
	for i := range ct.Counts {
		for j, n := range ct.Counts[i] {
			expected := rowTotals[i] * colTotals[j] / total
			if expected == 0 {
				continue
			}
			diff := float64(n) - expected
			statistic += diff * diff / expected
		}
	}

	ct.DF = (rows - 1) * (cols - 1)
	ct.ChiSquare = statistic
	chiDist := distuv.ChiSquared{K: float64(ct.DF)}
	ct.PValue = chiDist.Survival(statistic)
}

func sortedKeys(m map[string]map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
