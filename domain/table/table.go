// Package table holds the in-memory tabular data model shared by every
// engine component: an ordered sequence of named columns over row-major
// storage, where each cell is a tagged-variant Value. All columns share
// the same row count; row order is insertion order of the source.
package table

import (
	"fmt"

	"caselens/domain/core"
)

// Table is an ordered set of named columns with uniform row count.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New creates an empty table with the given column order.
func New(columns ...string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{cols: cols, index: index}, nil
}

// MustNew is New for fixture construction; panics on duplicate columns.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.cols) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow appends one row of cells aligned to the column order.
func (t *Table) AppendRow(cells ...Value) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	row := make([]Value, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the cells of row i in column order. The returned slice is
// shared with the table and must not be mutated.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Cell returns the cell at (row, column). Missing columns yield a
// missing value rather than a panic.
func (t *Table) Cell(row int, column string) Value {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return NewMissingValue()
	}
	return t.rows[row][i]
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	out := make([]Value, len(t.rows))
	for r := range t.rows {
		out[r] = t.rows[r][i]
	}
	return out, nil
}

// SetColumn replaces the cells of an existing column. The replacement
// must preserve the row count.
func (t *Table) SetColumn(name string, cells []Value) error {
	i, ok := t.index[name]
	if !ok {
		return core.NewColumnNotFoundError(name)
	}
	if len(cells) != len(t.rows) {
		return fmt.Errorf("column %q: %d cells for %d rows", name, len(cells), len(t.rows))
	}
	for r := range t.rows {
		t.rows[r][i] = cells[r]
	}
	return nil
}

// Select returns a new table restricted to the named columns, in the
// requested order. Names absent from the table are skipped and reported
// back to the caller instead of failing.
func (t *Table) Select(columns []string) (*Table, []string) {
	var keep []string
	var missing []string
	for _, c := range columns {
		if t.HasColumn(c) {
			keep = append(keep, c)
		} else {
			missing = append(missing, c)
		}
	}
	out := MustNew(keep...)
	idxs := make([]int, len(keep))
	for i, c := range keep {
		idxs[i] = t.index[c]
	}
	for _, row := range t.rows {
		cells := make([]Value, len(keep))
		for i, src := range idxs {
			cells[i] = row[src]
		}
		out.rows = append(out.rows, cells)
	}
	return out, missing
}

// Clone returns a deep-enough copy: rows are copied, cell values are
// shared (values are immutable once built).
func (t *Table) Clone() *Table {
	out := MustNew(t.cols...)
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		cells := make([]Value, len(row))
		copy(cells, row)
		out.rows[r] = cells
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values in the
// named column. Columns holding raw list cells are not hashable in a
// meaningful way; they report ok=false instead of a count.
func (t *Table) DistinctCount(name string) (count int, ok bool, err error) {
	i, found := t.index[name]
	if !found {
		return 0, false, core.NewColumnNotFoundError(name)
	}
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		v := row[i]
		if v.IsMissing {
			continue
		}
		if v.IsList() {
			return 0, false, nil
		}
		seen[v.String()] = struct{}{}
	}
	return len(seen), true, nil
}
