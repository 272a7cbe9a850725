package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/events"
)

// IntakeStatus is the last known state of the mailbox poller.
type IntakeStatus struct {
	LastRunAt    string `json:"last_run_at"`
	LastOkAt     string `json:"last_ok_at"`
	LastError    string `json:"last_error"`
	LastAnalyzed int    `json:"last_analyzed"`
	Running      bool   `json:"running"`
}

type IntakeHandler struct {
	DB           *sql.DB
	CfgVal       *atomic.Value // config.Config
	IntakeStatus *atomic.Value // httpapi.IntakeStatus
	Hub          *events.Hub
	RunIntake    func(ctx context.Context, db *sql.DB, cfg config.Config, onAnalyzed func(id int64)) (int, error)
}

func (h IntakeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.IntakeStatus.Load().(IntakeStatus)
	writeJSON(w, st)
}

func (h IntakeHandler) Run(w http.ResponseWriter, r *http.Request) {
	// Claim the running slot with a CAS loop so two concurrent POSTs
	// cannot both start a run.
	for {
		st := h.IntakeStatus.Load().(IntakeStatus)
		if st.Running {
			writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
			return
		}
		next := IntakeStatus{
			LastRunAt: time.Now().Format(time.RFC3339),
			Running:   true,
			LastOkAt:  st.LastOkAt,
		}
		if h.IntakeStatus.CompareAndSwap(st, next) {
			break
		}
	}

	reqID := RequestIDFrom(r.Context())

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		analyzed, err := h.RunIntake(context.Background(), h.DB, cfg, func(id int64) {
			h.Hub.Publish(reqID, "analysis_created", map[string]any{"id": id})
		})

		now := time.Now().Format(time.RFC3339)
		next := h.IntakeStatus.Load().(IntakeStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastAnalyzed = analyzed
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.IntakeStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
