package dataset

import (
	"caselens/domain/core"
	"caselens/domain/table"
)

// ExpandNote tells the caller what the expander actually did, so a
// human-facing layer can surface it.
type ExpandNote struct {
	ParsedSerialized bool `json:"parsed_serialized"`
	ExpandedNative   bool `json:"expanded_native"`
}

// Happened reports whether the expander changed anything at all.
func (n ExpandNote) Happened() bool { return n.ParsedSerialized || n.ExpandedNative }

// ExpandListColumn normalizes a column that may hold native list cells,
// textual serializations of lists, or plain scalars, and explodes it so
// each list element becomes its own row (all other columns duplicated).
// Scalar and null cells pass through as single rows, which makes the
// operation a no-op - and therefore idempotent - on already-expanded
// columns. Serialized cells that fail the strict parse keep their
// original string.
func ExpandListColumn(t *table.Table, column string) (*table.Table, ExpandNote, error) {
	colIdx, ok := t.ColumnIndex(column)
	if !ok {
		return nil, ExpandNote{}, core.NewColumnNotFoundError(column)
	}

	note := ExpandNote{}

	// First pass: recover real lists from bracket-delimited strings.
	cells, err := t.Column(column)
	if err != nil {
		return nil, ExpandNote{}, err
	}
	anyList := false
	for i, v := range cells {
		if v.IsList() {
			anyList = true
			note.ExpandedNative = true
			continue
		}
		if v.IsString() && LooksLikeListLiteral(v.AsString()) {
			elems, parseErr := ParseListLiteral(v.AsString())
			if parseErr != nil {
				continue
			}
			cells[i] = table.NewListValue(elems)
			anyList = true
			note.ParsedSerialized = true
		}
	}

	if !anyList {
		return t.Clone(), ExpandNote{}, nil
	}

	// Second pass: one output row per list element. An empty list still
	// yields its row, with a null cell, so no case disappears.
	out, err := table.New(t.Columns()...)
	if err != nil {
		return nil, ExpandNote{}, err
	}
	for r := 0; r < t.RowCount(); r++ {
		row := t.Row(r)
		cell := cells[r]
		if !cell.IsList() {
			if err := out.AppendRow(row...); err != nil {
				return nil, ExpandNote{}, err
			}
			continue
		}
		if len(cell.ListVal) == 0 {
			dup := duplicateRow(row, colIdx, table.NewMissingValue())
			if err := out.AppendRow(dup...); err != nil {
				return nil, ExpandNote{}, err
			}
			continue
		}
		for _, elem := range cell.ListVal {
			dup := duplicateRow(row, colIdx, table.NewStringValue(elem))
			if err := out.AppendRow(dup...); err != nil {
				return nil, ExpandNote{}, err
			}
		}
	}
	return out, note, nil
}

func duplicateRow(row []table.Value, idx int, v table.Value) []table.Value {
	dup := make([]table.Value, len(row))
	copy(dup, row)
	dup[idx] = v
	return dup
}
