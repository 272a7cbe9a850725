package httpapi_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/events"
	"jobshield-engine/internal/httpapi"
	"jobshield-engine/internal/store"
)

func newTestMux(t *testing.T) *http.ServeMux {
	return newTestMuxWithIntake(t, nil)
}

func newTestMuxWithIntake(t *testing.T, runIntake func(ctx context.Context, db *sql.DB, cfg config.Config, onAnalyzed func(id int64)) (int, error)) *http.ServeMux {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	var cfg config.Config
	cfg.App.Port = 8080
	cfg.Rules = config.DefaultRules()

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)
	statusVal := &atomic.Value{}
	statusVal.Store(httpapi.IntakeStatus{})

	return httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          events.NewHub(),
		CfgVal:       cfgVal,
		IntakeStatus: statusVal,
		UserCfgPath:  filepath.Join(t.TempDir(), "config.yml"),
		LoadCfg:      func() (config.Config, error) { return cfg, nil },
		RunIntake:    runIntake,
	})
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpapi.APIError {
	t.Helper()
	var e httpapi.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func validAnalyzeBody() map[string]string {
	return map[string]string{
		"company_name": "Acme",
		"job_title":    "Software Engineer",
		"description":  "We are looking for a software engineer to join our team in Bangalore. You will build and maintain backend services in Go.",
		"email":        "jobs@gmail.com",
	}
}

func TestAnalyzeEndpoint_ScoresAndPersists(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", validAnalyzeBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success        bool   `json:"success"`
		RiskScore      int    `json:"risk_score"`
		Classification string `json:"classification"`
		DetectedFlags  []struct {
			Type     string `json:"type"`
			Severity string `json:"severity"`
		} `json:"detected_flags"`
		Explanation string `json:"explanation"`
		JobID       int64  `json:"job_id"`
		Timestamp   string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, 27, resp.RiskScore)
	assert.Equal(t, "Legitimate", resp.Classification)
	require.Len(t, resp.DetectedFlags, 2)
	assert.Equal(t, "Free Email Domain", resp.DetectedFlags[0].Type)
	assert.Contains(t, resp.Explanation, "legitimate")
	assert.Positive(t, resp.JobID)
	assert.NotEmpty(t, resp.Timestamp)

	// the analysis must be retrievable afterwards
	rec = doJSON(t, mux, http.MethodGet, "/api/results/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored store.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, "Acme", stored.CompanyName)
	assert.Equal(t, 27, stored.RiskScore)
	assert.Len(t, stored.Flags, 2)
}

func TestAnalyzeEndpoint_UppercaseEmailNormalized(t *testing.T) {
	mux := newTestMux(t)
	body := validAnalyzeBody()
	body["email"] = "Jobs@Gmail.COM"

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"risk_score":27`)
}

func TestAnalyzeEndpoint_Validation(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		name    string
		mutate  func(map[string]string)
		code    string
		message string
	}{
		{"missing company", func(m map[string]string) { m["company_name"] = "  " }, "invalid_request", `field "company_name" is required and cannot be empty`},
		{"missing title", func(m map[string]string) { delete(m, "job_title") }, "invalid_request", `field "job_title" is required and cannot be empty`},
		{"missing description", func(m map[string]string) { m["description"] = "" }, "invalid_request", `field "description" is required and cannot be empty`},
		{"missing email", func(m map[string]string) { m["email"] = "" }, "invalid_request", `field "email" is required and cannot be empty`},
		{"email without at", func(m map[string]string) { m["email"] = "jobs.gmail.com" }, "invalid_request", "please provide a valid email address"},
		{"email without dotted domain", func(m map[string]string) { m["email"] = "jobs@localhost" }, "invalid_request", "please provide a valid email address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validAnalyzeBody()
			tc.mutate(body)
			rec := doJSON(t, mux, http.MethodPost, "/api/analyze", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			e := decodeError(t, rec)
			assert.Equal(t, tc.code, e.Error.Code)
			assert.Equal(t, tc.message, e.Error.Message)
		})
	}
}

func TestAnalyzeEndpoint_MalformedJSON(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeError(t, rec).Error.Code)
}

func TestAnalyzeEndpoint_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestResultsEndpoint_NotFoundAndBadID(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/results/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/results/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decodeError(t, rec).Error.Code)
}

func TestResultsEndpoint_ListWithFilter(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", validAnalyzeBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/results?classification=Legitimate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []store.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Legitimate", items[0].Classification)

	rec = doJSON(t, mux, http.MethodGet, "/api/results?classification=Fake", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Empty(t, items)
}

func TestStatsEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", validAnalyzeBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success    bool        `json:"success"`
		Statistics store.Stats `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Statistics.TotalAnalyses)
	assert.Equal(t, 1, resp.Statistics.Legitimate)
	assert.InDelta(t, 27, resp.Statistics.AverageRiskScore, 0.001)
}

func TestBatchEndpoint(t *testing.T) {
	mux := newTestMux(t)

	clean := validAnalyzeBody()
	clean["email"] = "hr@acme.com"
	clean["website"] = "https://acme.com"

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze/batch", map[string]any{
		"postings": []map[string]string{validAnalyzeBody(), clean},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Results []struct {
			RiskScore      int    `json:"risk_score"`
			Classification string `json:"classification"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 27, resp.Results[0].RiskScore)
	assert.Equal(t, 0, resp.Results[1].RiskScore)

	// batch runs are not persisted
	rec = doJSON(t, mux, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_analyses":0`)
}

func TestBatchEndpoint_Validation(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze/batch", map[string]any{"postings": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Error.Code)

	bad := validAnalyzeBody()
	bad["email"] = ""
	rec = doJSON(t, mux, http.MethodPost, "/api/analyze/batch", map[string]any{
		"postings": []map[string]string{bad},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}
