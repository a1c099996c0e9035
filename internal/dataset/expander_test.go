package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/domain/core"
	"caselens/domain/table"
)

func casesWithPenalTypes(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew("Caso Id", "Tipo Penal")
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("A"),
		table.NewStringValue("['roubo', 'furto']"),
	))
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("B"),
		table.NewListValue([]string{"homicídio"}),
	))
	return tbl
}

func TestExpandListColumnMixedRepresentations(t *testing.T) {
	out, note, err := ExpandListColumn(casesWithPenalTypes(t), "Tipo Penal")
	require.NoError(t, err)

	assert.True(t, note.ParsedSerialized)
	assert.True(t, note.ExpandedNative)
	assert.True(t, note.Happened())

	require.Equal(t, 3, out.RowCount())
	type pair struct{ id, penal string }
	var got []pair
	for r := 0; r < out.RowCount(); r++ {
		got = append(got, pair{
			out.Cell(r, "Caso Id").String(),
			out.Cell(r, "Tipo Penal").String(),
		})
	}
	assert.Equal(t, []pair{
		{"A", "roubo"},
		{"A", "furto"},
		{"B", "homicídio"},
	}, got)
}

func TestExpandListColumnIdempotent(t *testing.T) {
	once, _, err := ExpandListColumn(casesWithPenalTypes(t), "Tipo Penal")
	require.NoError(t, err)

	twice, note, err := ExpandListColumn(once, "Tipo Penal")
	require.NoError(t, err)
	assert.False(t, note.Happened())
	assert.Equal(t, once.RowCount(), twice.RowCount())
	for r := 0; r < once.RowCount(); r++ {
		assert.Equal(t,
			once.Cell(r, "Tipo Penal").String(),
			twice.Cell(r, "Tipo Penal").String())
	}
}

func TestExpandListColumnEmptyListKeepsItsRow(t *testing.T) {
	tbl := table.MustNew("Caso Id", "Tipo Penal")
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("A"),
		table.NewStringValue("[]"),
	))
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("B"),
		table.NewStringValue("['roubo']"),
	))

	out, note, err := ExpandListColumn(tbl, "Tipo Penal")
	require.NoError(t, err)
	assert.True(t, note.ParsedSerialized)

	require.Equal(t, 2, out.RowCount())
	assert.True(t, out.Cell(0, "Tipo Penal").IsMissing)
}

func TestExpandListColumnScalarsPassThrough(t *testing.T) {
	tbl := table.MustNew("Caso Id", "Situação")
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("A"),
		table.NewStringValue("Em Andamento"),
	))
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("B"),
		table.NewMissingValue(),
	))

	out, note, err := ExpandListColumn(tbl, "Situação")
	require.NoError(t, err)
	assert.False(t, note.Happened())
	assert.Equal(t, 2, out.RowCount())
}

func TestExpandListColumnKeepsUnparseableText(t *testing.T) {
	tbl := table.MustNew("Caso Id", "Tipo Penal")
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("A"),
		table.NewStringValue("[broken"),
	))
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("B"),
		table.NewStringValue("['ok']"),
	))

	out, _, err := ExpandListColumn(tbl, "Tipo Penal")
	require.NoError(t, err)

	assert.Equal(t, "[broken", out.Cell(0, "Tipo Penal").String())
}

func TestExpandListColumnUnknownColumn(t *testing.T) {
	tbl := table.MustNew("Caso Id")
	_, _, err := ExpandListColumn(tbl, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}
