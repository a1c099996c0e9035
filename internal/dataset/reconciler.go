// Package dataset implements the one-time reconciliation between the
// principal case table (unique key) and the complementary export whose
// duplicate keys are caused by a single multi-valued attribute, plus the
// query-time inverse: expanding packed list columns back into one row
// per element for counting.
package dataset

import (
	"fmt"
	"log"
	"sort"

	"caselens/domain/core"
	"caselens/domain/table"
)

// JoinType defines the merge operation between principal and packed
// complementary tables.
type JoinType string

const (
	LeftJoin  JoinType = "left"
	InnerJoin JoinType = "inner"
)

// VerifyKeyUnique checks the reconciler precondition: the key column has
// exactly as many distinct values as the table has rows. Violation is
// fatal, not a warning.
func VerifyKeyUnique(t *table.Table, keyColumn string) error {
	distinct, hashable, err := t.DistinctCount(keyColumn)
	if err != nil {
		return err
	}
	if !hashable {
		return fmt.Errorf("%w: %q", core.ErrUnhashableColumn, keyColumn)
	}
	// Missing keys count as rows but never as distinct values, so a
	// single null key already breaks uniqueness here.
	if distinct != t.RowCount() {
		return core.NewKeyNotUniqueError(keyColumn, distinct, t.RowCount())
	}
	return nil
}

// PackColumnToList groups the table by the key column and collects the
// multi-valued attribute into an ordered list per key, making the key
// unique. For every other column the first value encountered per key is
// kept ("first wins" - a policy, not an aggregate). Row order follows
// first appearance of each key; within a list, original row order is
// preserved, duplicates included.
func PackColumnToList(t *table.Table, keyColumn, aggColumn string) (*table.Table, error) {
	keyIdx, ok := t.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}
	aggIdx, ok := t.ColumnIndex(aggColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(aggColumn)
	}

	type group struct {
		first []table.Value
		list  []string
	}
	var order []string
	groups := make(map[string]*group)

	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		key := row[keyIdx].String()
		g, seen := groups[key]
		if !seen {
			first := make([]table.Value, len(row))
			copy(first, row)
			g = &group{first: first}
			groups[key] = g
			order = append(order, key)
		}
		if cell := row[aggIdx]; !cell.IsMissing {
			g.list = append(g.list, cell.String())
		}
	}

	out, err := table.New(t.Columns()...)
	if err != nil {
		return nil, err
	}
	for _, key := range order {
		g := groups[key]
		cells := make([]table.Value, len(g.first))
		copy(cells, g.first)
		cells[aggIdx] = table.NewListValue(g.list)
		if err := out.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MergeTables joins the principal (left) table to the packed
// complementary (right) table on the key column. A left join keeps every
// principal row, null-filling complementary columns for unmatched keys;
// an inner join keeps matched rows only. Overlapping non-key column
// names are a data assumption violation and are reported, not renamed.
func MergeTables(left, right *table.Table, keyColumn string, how JoinType) (*table.Table, error) {
	leftKey, ok := left.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}
	rightKey, ok := right.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}
	if how != LeftJoin && how != InnerJoin {
		return nil, fmt.Errorf("unsupported join type %q", how)
	}

	var rightCols []string
	var rightIdxs []int
	for i, c := range right.Columns() {
		if i == rightKey {
			continue
		}
		if left.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", core.ErrColumnCollision, c)
		}
		rightCols = append(rightCols, c)
		rightIdxs = append(rightIdxs, i)
	}

	// Single pass over the right side; the packed side is unique per key
	// after PackColumnToList, first match wins regardless.
	rightByKey := make(map[string][]table.Value, right.RowCount())
	for r := 0; r < right.RowCount(); r++ {
		row := right.Row(r)
		key := row[rightKey].String()
		if _, seen := rightByKey[key]; !seen {
			rightByKey[key] = row
		}
	}

	out, err := table.New(append(left.Columns(), rightCols...)...)
	if err != nil {
		return nil, err
	}
	for r := 0; r < left.RowCount(); r++ {
		leftRow := left.Row(r)
		rightRow, matched := rightByKey[leftRow[leftKey].String()]
		if !matched && how == InnerJoin {
			continue
		}
		cells := make([]table.Value, 0, len(leftRow)+len(rightIdxs))
		cells = append(cells, leftRow...)
		for _, i := range rightIdxs {
			if matched {
				cells = append(cells, rightRow[i])
			} else {
				cells = append(cells, table.NewMissingValue())
			}
		}
		if err := out.AppendRow(cells...); err != nil {
			return nil, err
		}
	}

	log.Printf("[Reconciler] merged %dx%d with %dx%d -> %dx%d (%s join on %q)",
		left.RowCount(), left.ColumnCount(), right.RowCount(), right.ColumnCount(),
		out.RowCount(), out.ColumnCount(), how, keyColumn)
	return out, nil
}

// CheckExplodedness verifies the data assumption behind packing: among
// rows whose key is duplicated, only the suspect column should vary. It
// returns, per offending column, how many keys carry more than one
// distinct value there. An empty result confirms the assumption; a
// non-empty one must be surfaced, never silently averaged away.
func CheckExplodedness(t *table.Table, keyColumn, suspectColumn string) (map[string]int, error) {
	keyIdx, ok := t.ColumnIndex(keyColumn)
	if !ok {
		return nil, core.NewColumnNotFoundError(keyColumn)
	}
	if !t.HasColumn(suspectColumn) {
		return nil, core.NewColumnNotFoundError(suspectColumn)
	}

	rowsPerKey := make(map[string][]int)
	for r := 0; r < t.RowCount(); r++ {
		key := t.Row(r)[keyIdx].String()
		rowsPerKey[key] = append(rowsPerKey[key], r)
	}

	offenders := make(map[string]int)
	for ci, col := range t.Columns() {
		if col == keyColumn || col == suspectColumn {
			continue
		}
		for _, rows := range rowsPerKey {
			if len(rows) < 2 {
				continue
			}
			distinct := make(map[string]struct{})
			for _, r := range rows {
				if v := t.Row(r)[ci]; !v.IsMissing {
					distinct[v.String()] = struct{}{}
				}
			}
			if len(distinct) > 1 {
				offenders[col]++
			}
		}
	}
	return offenders, nil
}

// VerifyExplodedness is the fatal form of CheckExplodedness: a non-empty
// offender report becomes an error carrying the formatted report.
func VerifyExplodedness(t *table.Table, keyColumn, suspectColumn string) error {
	offenders, err := CheckExplodedness(t, keyColumn, suspectColumn)
	if err != nil {
		return err
	}
	if len(offenders) > 0 {
		return fmt.Errorf("%w: %s", core.ErrExplodedness, FormatOffenders(offenders))
	}
	return nil
}

// FormatOffenders renders the explodedness report sorted by affected key
// count, for logs and pipeline failure messages.
func FormatOffenders(offenders map[string]int) string {
	cols := make([]string, 0, len(offenders))
	for c := range offenders {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		if offenders[cols[i]] != offenders[cols[j]] {
			return offenders[cols[i]] > offenders[cols[j]]
		}
		return cols[i] < cols[j]
	})
	s := ""
	for i, c := range cols {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s (%d keys)", c, offenders[c])
	}
	return s
}
