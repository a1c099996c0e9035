package main

import (
	"log"

	"github.com/joho/godotenv"

	"caselens/adapters/tabfile"
	"caselens/domain/table"
	"caselens/internal/config"
	"caselens/internal/testkit"
	"caselens/ui"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var raw *table.Table
	if cfg.Data.DataFile != "" {
		raw, err = tabfile.NewDataReader(cfg.Data.DataFile).ReadTable()
		if err != nil {
			log.Fatal("Failed to load data file:", err)
		}
	} else {
		log.Println("DATA_FILE not set, serving synthetic demo data")
		raw = testkit.NewGenerator(1).RawCaseTable(500)
	}

	app, err := ui.NewApp(ui.Config{
		Port:          cfg.Server.Port,
		KeyColumn:     cfg.Data.KeyColumn,
		MaxSampleRows: cfg.Data.MaxSampleRows,
	}, raw)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting case explorer on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start())
}
