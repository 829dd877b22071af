package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/benchmark-cli/internal/benchmark"
	"github.com/sells-group/benchmark-cli/internal/config"
	"github.com/sells-group/benchmark-cli/internal/pipeline"
	"github.com/sells-group/benchmark-cli/internal/store"
	"github.com/sells-group/benchmark-cli/internal/template"
)

const snapshotsDir = "../../testdata/snapshots"

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:          8080,
		CORSOrigins:   []string{"*"},
		RatePerSecond: 100,
		RateBurst:     100,
	}
}

func newTestHandler(t *testing.T, cfg config.ServerConfig, withStore bool) http.Handler {
	t.Helper()
	eng, err := benchmark.New(benchmark.DefaultConfig(),
		benchmark.WithClock(func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	cache := template.NewCache(template.DirSource{Dir: "../../templates"}, "general_enterprise")

	var st store.Store
	if withStore {
		sq, err := store.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
		require.NoError(t, err)
		require.NoError(t, sq.Migrate(context.Background()))
		t.Cleanup(func() { sq.Close() }) //nolint:errcheck
		st = sq
	}
	return New(cfg, pipeline.New(eng, cache, st)).Handler()
}

func readSnapshot(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(snapshotsDir, name))
	require.NoError(t, err)
	return data
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	rec := do(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCompare(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	rec := do(t, h, http.MethodPost, "/v1/compare", readSnapshot(t, "acme_insurance.json"), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, template.MatchedSubIndustry, res.MatchedOn)
	require.NotNil(t, res.Report)
	assert.Equal(t, "insurance_pc", res.Report.TemplateID)
	assert.True(t, res.Report.IsDeterministic)
	assert.Empty(t, res.ReportID)
}

func TestCompare_YAMLWithLens(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	rec := do(t, h, http.MethodPost, "/v1/compare?lens=carve_out", readSnapshot(t, "beta_manufacturing.yaml"), "application/yaml; charset=utf-8")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "general_enterprise", res.Report.TemplateID)
	assert.Equal(t, "carve_out", res.Report.DealLens)
	require.Len(t, res.Report.Considerations, 1)
	assert.Equal(t, "tsa_scope", res.Report.Considerations[0].ID)
}

func TestCompare_SaveAndFetch(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), true)

	rec := do(t, h, http.MethodPost, "/v1/compare?save=true", readSnapshot(t, "acme_insurance.json"), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.ReportID)
	assert.Equal(t, "/v1/reports/"+res.ReportID, rec.Header().Get("Location"))

	got := do(t, h, http.MethodGet, "/v1/reports/"+res.ReportID, nil, "")
	require.Equal(t, http.StatusOK, got.Code)
	var stored store.StoredReport
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &stored))
	assert.Equal(t, "acme_insurance", stored.CompanyID)
	require.NotNil(t, stored.Report)

	list := do(t, h, http.MethodGet, "/v1/reports?company_id=acme_insurance", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	var reports []store.StoredReport
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &reports))
	assert.Len(t, reports, 1)

	missing := do(t, h, http.MethodGet, "/v1/reports/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"malformed json", "/v1/compare", `{"company_id":`, http.StatusBadRequest, "snapshot: parse json"},
		{"missing company id", "/v1/compare", `{"profile":{}}`, http.StatusBadRequest, "company_id is required"},
		{"duplicate ids", "/v1/compare", `{"company_id":"x","inventory":[{"id":"A","name":"a"},{"id":"A","name":"b"}]}`, http.StatusBadRequest, "duplicate id"},
		{"bad save flag", "/v1/compare?save=maybe", `{"company_id":"x"}`, http.StatusBadRequest, "save must be a boolean"},
		{"save without store", "/v1/compare?save=true", `{"company_id":"x"}`, http.StatusServiceUnavailable, "report store not configured"},
		{"unknown template", "/v1/compare", `{"company_id":"x","template_id":"nope"}`, http.StatusUnprocessableEntity, "not found"},
	}

	h := newTestHandler(t, testServerConfig(), false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, []byte(tt.body), "application/json")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestCompare_BodyReadErrors(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	rec := do(t, h, http.MethodPost, "/v1/compare", bytes.Repeat([]byte(" "), maxBodyBytes+1), "application/json")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")

	req := httptest.NewRequest(http.MethodPost, "/v1/compare", failingReader{})
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection reset")
}

func TestReports_NoStore(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/reports", nil, "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/reports/abc", nil, "").Code)
}

func TestReports_BadPaging(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), true)

	rec := do(t, h, http.MethodGet, "/v1/reports?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "limit must be a non-negative integer")

	rec = do(t, h, http.MethodGet, "/v1/reports", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTemplates(t *testing.T) {
	h := newTestHandler(t, testServerConfig(), false)

	rec := do(t, h, http.MethodGet, "/v1/templates", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []templateSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "general_enterprise", list[0].ID)
	assert.Equal(t, "insurance_pc", list[1].ID)
	assert.Equal(t, 5, list[1].Metrics)
	assert.Equal(t, 9, list[1].Systems)

	one := do(t, h, http.MethodGet, "/v1/templates/insurance_pc", nil, "")
	require.Equal(t, http.StatusOK, one.Code)
	assert.Contains(t, one.Body.String(), `"sub_industry":"property_casualty"`)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/templates/nope", nil, "").Code)

	reload := do(t, h, http.MethodPost, "/v1/templates/reload", nil, "")
	require.Equal(t, http.StatusOK, reload.Code)
	assert.JSONEq(t, `{"templates":2}`, reload.Body.String())
}

func TestRateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.RatePerSecond = 0.001
	cfg.RateBurst = 1
	h := newTestHandler(t, cfg, false)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/v1/templates", nil, "").Code)
	rec := do(t, h, http.MethodGet, "/v1/templates", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health is outside the limiter.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil, "").Code)
}

func TestCORS(t *testing.T) {
	cfg := testServerConfig()
	cfg.CORSOrigins = []string{"https://app.example.com"}
	h := newTestHandler(t, cfg, false)

	req := httptest.NewRequest(http.MethodOptions, "/v1/templates", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
