// Command prepare runs the one-time offline reconciliation: it loads the
// principal case table and the complementary export, verifies the data
// assumptions, packs the multi-valued attribute into a list per key,
// left-joins the two sides and writes the merged table out.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caselens/adapters/tabfile"
	"caselens/domain/table"
	"caselens/internal/config"
	"caselens/internal/dataset"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if cfg.Data.PrincipalFile == "" || cfg.Data.ComplementaryFile == "" {
		log.Fatal("PRINCIPAL_FILE and COMPLEMENTARY_FILE are required")
	}

	var principal, complementary *table.Table
	var g errgroup.Group
	g.Go(func() error {
		var err error
		principal, err = tabfile.NewDataReader(cfg.Data.PrincipalFile).ReadTable()
		return err
	})
	g.Go(func() error {
		var err error
		complementary, err = tabfile.NewDataReader(cfg.Data.ComplementaryFile).ReadTable()
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatal("Failed to load source tables:", err)
	}

	keyColumn := cfg.Data.KeyColumn
	multiColumn := cfg.Data.MultiValueColumn

	// The principal side must already be one row per case. Stop rather
	// than produce a corrupt merge.
	if err := dataset.VerifyKeyUnique(principal, keyColumn); err != nil {
		log.Fatal("Principal table failed uniqueness check: ", err)
	}

	// Confirm that the complementary duplicates are explained by the
	// multi-valued attribute alone.
	if err := dataset.VerifyExplodedness(complementary, keyColumn, multiColumn); err != nil {
		log.Fatal("Explodedness check failed: ", err)
	}

	packed, err := dataset.PackColumnToList(complementary, keyColumn, multiColumn)
	if err != nil {
		log.Fatal("Packing failed: ", err)
	}

	merged, err := dataset.MergeTables(principal, packed, keyColumn, dataset.LeftJoin)
	if err != nil {
		log.Fatal("Merge failed: ", err)
	}

	// Postconditions: a left join must not lose or invent principal rows,
	// and must have brought the complementary columns along.
	if merged.RowCount() != principal.RowCount() {
		log.Fatalf("Merge postcondition failed: %d rows, expected %d",
			merged.RowCount(), principal.RowCount())
	}
	if merged.ColumnCount() <= principal.ColumnCount() {
		log.Fatalf("Merge postcondition failed: %d columns, expected more than %d",
			merged.ColumnCount(), principal.ColumnCount())
	}
	if err := dataset.VerifyKeyUnique(merged, keyColumn); err != nil {
		log.Fatal("Merged table failed uniqueness check: ", err)
	}

	if err := tabfile.WriteCSV(merged, cfg.Data.MergedFile); err != nil {
		log.Fatal("Failed to write merged table: ", err)
	}
	log.Printf("Reconciliation complete: %d cases, %d columns -> %s",
		merged.RowCount(), merged.ColumnCount(), cfg.Data.MergedFile)
}
