package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"jobshield-engine/internal/analyze"
	"jobshield-engine/internal/config"
	"jobshield-engine/internal/domain"
	"jobshield-engine/internal/events"
	"jobshield-engine/internal/store"
)

type AnalyzeHandler struct {
	DB     *sql.DB
	Hub    *events.Hub
	CfgVal *atomic.Value // stores config.Config
}

type analyzeRequest struct {
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Salary      string `json:"salary"`
}

type analyzeResponse struct {
	Success        bool                  `json:"success"`
	RiskScore      int                   `json:"risk_score"`
	Classification domain.Classification `json:"classification"`
	DetectedFlags  []domain.Flag         `json:"detected_flags"`
	Explanation    string                `json:"explanation"`
	JobID          int64                 `json:"job_id,omitempty"`
	Timestamp      string                `json:"timestamp"`
}

// posting validates and normalizes the request body into a Posting.
// Mirrors the boundary checks the engine relies on: required fields
// non-empty, email lower-cased with an @-delimited domain that has a
// dot.
func (req analyzeRequest) posting() (domain.Posting, string) {
	p := domain.Posting{
		CompanyName: strings.TrimSpace(req.CompanyName),
		JobTitle:    strings.TrimSpace(req.JobTitle),
		Description: strings.TrimSpace(req.Description),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Website:     strings.TrimSpace(req.Website),
		Salary:      strings.TrimSpace(req.Salary),
	}

	switch {
	case p.CompanyName == "":
		return p, `field "company_name" is required and cannot be empty`
	case p.JobTitle == "":
		return p, `field "job_title" is required and cannot be empty`
	case p.Description == "":
		return p, `field "description" is required and cannot be empty`
	case p.Email == "":
		return p, `field "email" is required and cannot be empty`
	}

	_, dom, ok := strings.Cut(p.Email, "@")
	if !ok || !strings.Contains(dom, ".") {
		return p, "please provide a valid email address"
	}
	return p, ""
}

func (h AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "request body must be JSON")
		return
	}

	p, msg := req.posting()
	if msg != "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	res, err := analyze.New(cfg.Rules).Analyze(p)
	if errors.Is(err, analyze.ErrMalformedEmail) {
		WriteError(w, r, http.StatusBadRequest, "invalid_email", "please provide a valid email address")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "analysis_failed", "an error occurred during analysis")
		return
	}

	resp := analyzeResponse{
		Success:        true,
		RiskScore:      res.RiskScore,
		Classification: res.Classification,
		DetectedFlags:  res.Flags,
		Explanation:    explanationFor(res.Classification),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	// Persistence is best-effort: a storage failure must not discard a
	// finished analysis.
	id, err := store.InsertAnalysis(r.Context(), h.DB, p, res)
	if err != nil {
		reqID := RequestIDFrom(r.Context())
		log.Printf("level=error msg=\"persist analysis\" request_id=%s err=%v", reqID, err)
	} else {
		resp.JobID = id
		h.Hub.Publish(RequestIDFrom(r.Context()), "analysis_created", map[string]any{
			"id":             id,
			"risk_score":     res.RiskScore,
			"classification": res.Classification,
		})
	}

	writeJSON(w, resp)
}

type batchRequest struct {
	Postings []analyzeRequest `json:"postings"`
}

type batchResponse struct {
	Success bool          `json:"success"`
	Results []batchResult `json:"results"`
}

type batchResult struct {
	RiskScore      int                   `json:"risk_score"`
	Classification domain.Classification `json:"classification"`
	DetectedFlags  []domain.Flag         `json:"detected_flags"`
	Explanation    string                `json:"explanation"`
}

const maxBatchSize = 100

// AnalyzeBatch scores up to maxBatchSize postings in one call. Results
// are not persisted; callers that want records use /api/analyze.
func (h AnalyzeHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "request body must be JSON")
		return
	}
	if len(req.Postings) == 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "postings must not be empty")
		return
	}
	if len(req.Postings) > maxBatchSize {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "too many postings in one batch")
		return
	}

	postings := make([]domain.Posting, len(req.Postings))
	for i, pr := range req.Postings {
		p, msg := pr.posting()
		if msg != "" {
			WriteError(w, r, http.StatusBadRequest, "invalid_request", msg)
			return
		}
		postings[i] = p
	}

	cfg := h.CfgVal.Load().(config.Config)
	results, err := analyze.New(cfg.Rules).AnalyzeBatch(r.Context(), postings)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "analysis_failed", "an error occurred during analysis")
		return
	}

	out := batchResponse{Success: true, Results: make([]batchResult, len(results))}
	for i, res := range results {
		out.Results[i] = batchResult{
			RiskScore:      res.RiskScore,
			Classification: res.Classification,
			DetectedFlags:  res.Flags,
			Explanation:    explanationFor(res.Classification),
		}
	}
	writeJSON(w, out)
}
