// Package testkit builds synthetic case-record tables for tests and for
// running the server without a real export.
package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"caselens/domain/table"
)

// Columns of the synthetic case table, mirroring the shape of the real
// administrative export after reconciliation.
const (
	ColCaseID    = "Caso Id"
	ColSituation = "Situação"
	ColUnit      = "Unidade UF"
	ColPenalType = "Tipo Penal"
	ColFactDate  = "Data Fato"
	ColDuration  = "Duração Dias"
)

var situations = []string{"Em Andamento", "Concluído", "Suspenso"}
var units = []string{"SP", "RJ", "MG", "RS"}
var penalTypes = []string{"roubo", "furto", "estelionato", "homicídio", "lavagem de dinheiro"}

// Generator produces deterministic synthetic case tables.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed so fixtures are
// reproducible across runs.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// CaseTable builds a typed case table with n rows: unique case ids,
// categorical situation/unit columns, a packed list-of-string penal type
// column, a timestamp column and a numeric duration.
func (g *Generator) CaseTable(n int) *table.Table {
	t := table.MustNew(ColCaseID, ColSituation, ColUnit, ColPenalType, ColFactDate, ColDuration)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		types := make([]string, 1+g.rng.Intn(3))
		for j := range types {
			types[j] = penalTypes[g.rng.Intn(len(penalTypes))]
		}
		date := start.AddDate(0, 0, g.rng.Intn(365))
		_ = t.AppendRow(
			table.NewStringValue(fmt.Sprintf("CASO-%04d", i+1)),
			table.NewStringValue(situations[g.rng.Intn(len(situations))]),
			table.NewStringValue(units[g.rng.Intn(len(units))]),
			table.NewListValue(types),
			table.NewTimestampValue(date),
			table.NewNumericValue(float64(g.rng.Intn(900))),
		)
	}
	return t
}

// RawCaseTable builds the same shape but with every cell as a raw
// string, the way a file loader would deliver it: dates day-first,
// penal types serialized as bracket-delimited text, some placeholder
// cells mixed in.
func (g *Generator) RawCaseTable(n int) *table.Table {
	typed := g.CaseTable(n)
	t := table.MustNew(typed.Columns()...)
	for r := 0; r < typed.RowCount(); r++ {
		row := typed.Row(r)
		cells := make([]table.Value, len(row))
		for i, cell := range row {
			switch {
			case cell.IsTimestamp():
				cells[i] = table.NewStringValue(cell.AsTime().Format("02/01/2006"))
			case g.rng.Intn(20) == 0:
				cells[i] = table.NewStringValue("-")
			default:
				cells[i] = table.NewStringValue(cell.String())
			}
		}
		_ = t.AppendRow(cells...)
	}
	return t
}
