package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/domain/core"
	"caselens/domain/table"
)

func crosstabInput(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew("Situação", "Unidade")
	for _, row := range [][2]string{
		{"Em Andamento", "Norte"},
		{"Em Andamento", "Norte"},
		{"Em Andamento", "Sul"},
		{"Concluído", "Sul"},
	} {
		require.NoError(t, tbl.AppendRow(
			table.NewStringValue(row[0]),
			table.NewStringValue(row[1]),
		))
	}
	return tbl
}

func TestCrosstabRawRowCounts(t *testing.T) {
	ct, err := Crosstab(crosstabInput(t), "Situação", "Unidade")
	require.NoError(t, err)

	assert.Equal(t, []string{"Concluído", "Em Andamento"}, ct.RowValues)
	assert.Equal(t, []string{"Norte", "Sul"}, ct.ColValues)
	assert.Equal(t, [][]int{
		{0, 1},
		{2, 1},
	}, ct.Counts)
}

func TestCrosstabFoldsNullsIntoNoValue(t *testing.T) {
	tbl := table.MustNew("Situação", "Unidade")
	require.NoError(t, tbl.AppendRow(
		table.NewMissingValue(),
		table.NewStringValue("Norte"),
	))
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("-"),
		table.NewStringValue("Norte"),
	))

	ct, err := Crosstab(tbl, "Situação", "Unidade")
	require.NoError(t, err)
	assert.Equal(t, []string{NoValueLabel}, ct.RowValues)
	assert.Equal(t, [][]int{{2}}, ct.Counts)
}

func TestCrosstabCardinalityCap(t *testing.T) {
	tbl := table.MustNew("Situação", "Unidade")
	for i := 0; i <= MaxCrosstabCardinality; i++ {
		require.NoError(t, tbl.AppendRow(
			table.NewStringValue(fmt.Sprintf("s-%d", i)),
			table.NewStringValue("Norte"),
		))
	}
	_, err := Crosstab(tbl, "Situação", "Unidade")
	require.Error(t, err)
	assert.True(t, core.IsCardinalityError(err))
}

func TestCrosstabChiSquare(t *testing.T) {
	// Perfect association: statistic equals N, p-value near zero.
	tbl := table.MustNew("a", "b")
	for i := 0; i < 40; i++ {
		v := "x"
		if i%2 == 0 {
			v = "y"
		}
		require.NoError(t, tbl.AppendRow(
			table.NewStringValue(v),
			table.NewStringValue(v),
		))
	}
	ct, err := Crosstab(tbl, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, ct.DF)
	assert.InDelta(t, 40.0, ct.ChiSquare, 1e-9)
	assert.Less(t, ct.PValue, 0.001)
}

func TestCrosstabChiSquareUndefinedForSingleRow(t *testing.T) {
	tbl := table.MustNew("a", "b")
	require.NoError(t, tbl.AppendRow(
		table.NewStringValue("x"),
		table.NewStringValue("y"),
	))
	ct, err := Crosstab(tbl, "a", "b")
	require.NoError(t, err)
	assert.Zero(t, ct.DF)
	assert.Zero(t, ct.ChiSquare)
}

func TestCrosstabEmptyInput(t *testing.T) {
	tbl := table.MustNew("a", "b")
	ct, err := Crosstab(tbl, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, ct.RowValues)
	assert.Empty(t, ct.Counts)
}
