package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"caselens/domain/core"
	"caselens/domain/table"
	"caselens/internal/analysis"
	"caselens/internal/dataset"
	"caselens/internal/errors"
	"caselens/internal/typing"
)

// filterRequest is the common shape of the POST bodies: a filter
// predicate set, treated as a fresh snapshot per request.
type filterRequest struct {
	Filters map[string][]string `json:"filters"`
}

func (f filterRequest) filterSet() analysis.FilterSet {
	set := make(analysis.FilterSet, len(f.Filters))
	for col, values := range f.Filters {
		allowed := make(map[string]bool, len(values))
		for _, v := range values {
			allowed[v] = true
		}
		set[col] = allowed
	}
	return set
}

func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset_id":     a.datasetID,
		"loaded_at":      a.loadedAt,
		"row_count":      a.working.RowCount(),
		"column_count":   a.working.ColumnCount(),
		"profiles":       a.profiles,
		"conversion_log": a.conversionLog,
	})
}

func (a *App) handleColumns(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"columns":             a.working.Columns(),
		"key_column":          a.config.KeyColumn,
		"crosstab_candidates": analysis.CandidateColumns(a.working, analysis.MaxCrosstabCardinality),
	})
}

func (a *App) handleSample(w http.ResponseWriter, r *http.Request) {
	n := a.config.MaxSampleRows
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < n {
			n = parsed
		}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	cols := a.working.Columns()
	rows := make([][]string, 0, n)
	for r := 0; r < a.working.RowCount() && r < n; r++ {
		cells := a.working.Row(r)
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = c.String()
		}
		rows = append(rows, out)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns":    cols,
		"rows":       rows,
		"total_rows": a.working.RowCount(),
	})
}

func (a *App) handleApplyTypes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mapping map[string]string `json:"mapping"`
		Auto    bool              `json:"auto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	var mapping typing.TypeMapping
	if !req.Auto {
		mapping = make(typing.TypeMapping, len(req.Mapping))
		for col, target := range req.Mapping {
			mapping[col] = typing.TargetType(target)
		}
	}
	a.applyTypes(mapping)

	a.mu.RLock()
	defer a.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"conversion_log": a.conversionLog,
		"row_count":      a.working.RowCount(),
	})
}

func (a *App) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		filterRequest
		CategoryColumn string `json:"category_column"`
		TopN           int    `json:"top_n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	a.mu.RLock()
	filtered := analysis.ApplyFilters(a.working, req.filterSet())
	keyColumn := a.config.KeyColumn
	a.mu.RUnlock()

	// Packed list columns are expanded to one row per element before
	// counting; on scalar columns this is a no-op.
	expanded, note, err := dataset.ExpandListColumn(filtered, req.CategoryColumn)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := analysis.Aggregate(expanded, req.CategoryColumn, keyColumn)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := map[string]any{
		"result":      result,
		"expand_note": note,
	}
	if req.TopN > 0 {
		payload["top"] = result.TopN(req.TopN)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *App) handleCrosstab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		filterRequest
		RowColumn string `json:"row_column"`
		ColColumn string `json:"col_column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	a.mu.RLock()
	filtered := analysis.ApplyFilters(a.working, req.filterSet())
	a.mu.RUnlock()

	result, err := analysis.Crosstab(filtered, req.RowColumn, req.ColColumn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		filterRequest
		DateColumn    string `json:"date_column"`
		Granularity   string `json:"granularity"`
		SegmentColumn string `json:"segment_column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed request body"))
		return
	}
	granularity, err := analysis.ParseGranularity(req.Granularity)
	if err != nil {
		writeError(w, err)
		return
	}

	a.mu.RLock()
	filtered := analysis.ApplyFilters(a.working, req.filterSet())
	keyColumn := a.config.KeyColumn
	a.mu.RUnlock()

	result, err := analysis.Bucket(filtered, req.DateColumn, keyColumn, granularity, req.SegmentColumn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WorkingTable returns a clone of the current typed table, for callers
// embedding the app.
func (a *App) WorkingTable() *table.Table {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.working.Clone()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps engine errors onto the HTTP surface: precondition
// violations and cardinality limits are client-visible diagnostics,
// everything else is internal.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch {
	case core.IsPreconditionError(err):
		status = http.StatusUnprocessableEntity
		code = errors.CodePrecondition
	case core.IsCardinalityError(err):
		status = http.StatusUnprocessableEntity
		code = errors.CodeUnsupportedCardinality
	case code == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}
