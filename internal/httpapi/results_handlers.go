package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobshield-engine/internal/store"
)

type ResultsHandler struct {
	DB *sql.DB
}

func (h ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, err := store.ListAnalyses(r.Context(), h.DB, store.ListOpts{
		Classification: q.Get("classification"),
		Sort:           q.Get("sort"),
		Order:          q.Get("order"),
		Limit:          limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", "failed to list analysis results")
		return
	}
	writeJSON(w, items)
}

func (h ResultsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/results/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid analysis id")
		return
	}

	a, err := store.GetAnalysis(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "analysis result not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", "failed to retrieve analysis result")
		return
	}
	writeJSON(w, a)
}
