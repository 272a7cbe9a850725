package httpapi

import (
	"database/sql"
	"net/http"

	"jobshield-engine/internal/store"
)

type StatsHandler struct {
	DB *sql.DB
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stats_failed", "failed to retrieve statistics")
		return
	}
	writeJSON(w, map[string]any{"success": true, "statistics": s})
}
