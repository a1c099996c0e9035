package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/internal/testkit"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	raw := testkit.NewGenerator(42).RawCaseTable(200)
	app, err := NewApp(Config{Port: "0", KeyColumn: testkit.ColCaseID}, raw)
	require.NoError(t, err)
	return app
}

func doJSON(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestNewAppRejectsMissingKeyColumn(t *testing.T) {
	raw := testkit.NewGenerator(1).RawCaseTable(5)
	_, err := NewApp(Config{Port: "0", KeyColumn: "ghost"}, raw)
	require.Error(t, err)
}

func TestHandleProfile(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.EqualValues(t, 200, payload["row_count"])
	assert.NotEmpty(t, payload["profiles"])
	assert.NotEmpty(t, payload["conversion_log"])
	assert.NotEmpty(t, payload["dataset_id"])
}

func TestHandleColumns(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/api/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, testkit.ColCaseID, payload["key_column"])
	cols := payload["columns"].([]any)
	assert.Len(t, cols, 6)
}

func TestHandleSampleCap(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/api/sample?n=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Len(t, payload["rows"].([]any), 3)
	assert.EqualValues(t, 200, payload["total_rows"])
}

func TestHandleApplyTypes(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/types", map[string]any{
		"mapping": map[string]string{
			testkit.ColDuration: "numeric",
			testkit.ColFactDate: "datetime",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.EqualValues(t, 200, payload["row_count"])
	assert.NotEmpty(t, payload["conversion_log"])
}

func TestHandleAggregate(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/aggregate", map[string]any{
		"category_column": testkit.ColSituation,
		"top_n":           2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	result := payload["result"].(map[string]any)
	assert.Equal(t, testkit.ColSituation, result["column"])
	assert.NotEmpty(t, result["rows"])
	assert.Len(t, payload["top"].([]any), 2)
}

func TestHandleAggregateExpandsListColumn(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/aggregate", map[string]any{
		"category_column": testkit.ColPenalType,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	note := payload["expand_note"].(map[string]any)
	assert.Equal(t, true, note["parsed_serialized"])
}

func TestHandleAggregateWithFilters(t *testing.T) {
	app := newTestApp(t)

	all := decode(t, doJSON(t, app, http.MethodPost, "/api/aggregate", map[string]any{
		"category_column": testkit.ColSituation,
	}))
	filtered := decode(t, doJSON(t, app, http.MethodPost, "/api/aggregate", map[string]any{
		"category_column": testkit.ColSituation,
		"filters":         map[string][]string{testkit.ColUnit: {"SP"}},
	}))

	allTotal := all["result"].(map[string]any)["total"].(float64)
	filteredTotal := filtered["result"].(map[string]any)["total"].(float64)
	assert.Less(t, filteredTotal, allTotal)
	assert.Greater(t, filteredTotal, 0.0)
}

func TestHandleAggregateUnknownColumn(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/aggregate", map[string]any{
		"category_column": "ghost",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, "PRECONDITION_VIOLATION", payload["code"])
}

func TestHandleCrosstab(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/crosstab", map[string]any{
		"row_column": testkit.ColSituation,
		"col_column": testkit.ColUnit,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.NotEmpty(t, payload["row_values"])
	assert.NotEmpty(t, payload["col_values"])
	assert.NotEmpty(t, payload["counts"])
}

func TestHandleCrosstabCardinalityLimit(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/crosstab", map[string]any{
		"row_column": testkit.ColCaseID,
		"col_column": testkit.ColUnit,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, "UNSUPPORTED_CARDINALITY", payload["code"])
}

func TestHandleTimeseries(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/timeseries", map[string]any{
		"date_column": testkit.ColFactDate,
		"granularity": "month",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	points := payload["points"].([]any)
	assert.NotEmpty(t, points)
}

func TestHandleTimeseriesBadGranularity(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/api/timeseries", map[string]any{
		"date_column": testkit.ColFactDate,
		"granularity": "decade",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleMalformedBody(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/aggregate", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", payload["code"])
}

func TestHandleIndex(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/aggregate")
}
