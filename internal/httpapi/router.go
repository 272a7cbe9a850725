package httpapi

import "net/http"

// NewMux wires every handler; main() wraps the result in the middleware
// chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Analysis
	ah := AnalyzeHandler{DB: d.DB, Hub: d.Hub, CfgVal: d.CfgVal}
	mux.HandleFunc("/api/analyze", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Analyze,
	}))
	mux.HandleFunc("/api/analyze/batch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.AnalyzeBatch,
	}))

	// Stored results
	rh := ResultsHandler{DB: d.DB}
	mux.HandleFunc("/api/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/api/results/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.GetByPath, // expects /api/results/{id}
	}))

	// Statistics
	sth := StatsHandler{DB: d.DB}
	mux.HandleFunc("/api/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sth.Get,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// Mail intake
	ih := IntakeHandler{
		DB:           d.DB,
		CfgVal:       d.CfgVal,
		IntakeStatus: d.IntakeStatus,
		Hub:          d.Hub,
		RunIntake:    d.RunIntake,
	}
	mux.HandleFunc("/api/intake/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))
	mux.HandleFunc("/api/intake/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
