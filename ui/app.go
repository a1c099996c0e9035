// Package ui exposes the engine to the analyst-facing consumer over
// HTTP: JSON endpoints that filter the working table per request and
// return aggregation results. The widgets, charts and CSS live on the
// consumer's side; this is only the surface they talk to.
package ui

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"

	"caselens/domain/core"
	"caselens/domain/table"
	"caselens/internal/typing"
)

// Config holds UI application configuration
type Config struct {
	Port string
	// KeyColumn is the case identifier used for distinct-case counting.
	KeyColumn string
	// MaxSampleRows caps the rows returned by the sample endpoint.
	MaxSampleRows int
}

// App represents the analyst-facing HTTP application. The raw table is
// loaded once per session; type configuration can be re-applied, which
// rebuilds the working table from the raw one.
type App struct {
	router *chi.Mux
	config Config

	mu            sync.RWMutex
	datasetID     core.DatasetID
	loadedAt      core.Timestamp
	raw           *table.Table
	working       *table.Table
	profiles      []typing.ColumnProfile
	conversionLog []string
}

// NewApp creates the application around a raw table: profiles it,
// auto-detects column types and builds the typed working table.
func NewApp(config Config, raw *table.Table) (*App, error) {
	if raw == nil {
		return nil, fmt.Errorf("no table loaded")
	}
	if config.MaxSampleRows <= 0 {
		config.MaxSampleRows = 100
	}
	if !raw.HasColumn(config.KeyColumn) {
		return nil, core.NewColumnNotFoundError(config.KeyColumn)
	}

	app := &App{
		router:    chi.NewRouter(),
		config:    config,
		datasetID: core.DatasetID(core.NewID()),
		loadedAt:  core.Now(),
		raw:       raw,
	}
	app.applyTypes(nil)

	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

// applyTypes rebuilds the working table from the raw one. A nil mapping
// means auto-detection.
func (a *App) applyTypes(mapping typing.TypeMapping) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.profiles = typing.ProfileTable(a.raw)
	if mapping == nil {
		mapping = typing.AutoDetect(a.profiles)
	}
	a.working, a.conversionLog = typing.Coerce(a.raw, mapping)
	log.Printf("[UI] types applied: %d columns, %d log entries", a.working.ColumnCount(), len(a.conversionLog))
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Get("/api/profile", a.handleProfile)
	a.router.Get("/api/columns", a.handleColumns)
	a.router.Get("/api/sample", a.handleSample)
	a.router.Post("/api/types", a.handleApplyTypes)
	a.router.Post("/api/aggregate", a.handleAggregate)
	a.router.Post("/api/crosstab", a.handleCrosstab)
	a.router.Post("/api/timeseries", a.handleTimeseries)
}

// Start runs the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Port
	log.Printf("[UI] listening on %s (dataset %s, %d rows)", addr, a.datasetID, a.raw.RowCount())
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the handler for tests.
func (a *App) Router() http.Handler { return a.router }

const landingMarkdown = `# Case Explorer

Interactive exploration over a single in-memory case table.

## Endpoints

- ` + "`GET /api/profile`" + ` - per-column type profiles and the conversion log
- ` + "`GET /api/columns`" + ` - column names and crosstab candidates
- ` + "`GET /api/sample`" + ` - first rows of the working table
- ` + "`POST /api/types`" + ` - apply a column type mapping
- ` + "`POST /api/aggregate`" + ` - distinct-case counts per category
- ` + "`POST /api/crosstab`" + ` - two-way contingency table
- ` + "`POST /api/timeseries`" + ` - time-bucketed distinct-case counts

Every POST accepts a ` + "`filters`" + ` object mapping column names to
allowed values; requests are evaluated against a fresh filtered snapshot.
`

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(markdown.ToHTML([]byte(landingMarkdown), nil, nil))
}
