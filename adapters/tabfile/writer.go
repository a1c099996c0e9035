package tabfile

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"caselens/domain/table"
)

// WriteCSV writes a table to a CSV file, one header row plus one line
// per row. Cells go out through the universal stringification, so list
// cells serialize to bracket-delimited text and survive a round trip
// through the list expander.
func WriteCSV(t *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, t.ColumnCount())
	for r := 0; r < t.RowCount(); r++ {
		for i, cell := range t.Row(r) {
			record[i] = cell.String()
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	log.Printf("[TabFile] wrote %dx%d table to %s", t.RowCount(), t.ColumnCount(), path)
	return nil
}
