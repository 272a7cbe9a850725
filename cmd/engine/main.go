package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/events"
	"jobshield-engine/internal/httpapi"
	"jobshield-engine/internal/intake"
	"jobshield-engine/internal/scheduler"
	"jobshield-engine/internal/store"
)

func main() {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	dataDir := os.Getenv("JOBSHIELD_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir: sqlite wants a single writer process.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is already using %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "jobshield.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	var intakeStatus atomic.Value
	intakeStatus.Store(httpapi.IntakeStatus{})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		CfgVal:       &cfgVal,
		IntakeStatus: &intakeStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		RunIntake:    intake.RunOnce,
	})

	// Background mailbox polling, when enabled.
	if cfg.Intake.Enabled {
		interval := time.Duration(cfg.Intake.PollSeconds) * time.Second
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go scheduler.Every(context.Background(), interval, "intake", func(ctx context.Context) error {
			cur := cfgVal.Load().(config.Config)
			n, err := intake.RunOnce(ctx, db.Pool, cur, func(id int64) {
				hub.Publish("", "analysis_created", map[string]any{"id": id})
			})
			if n > 0 {
				log.Printf("[intake] analyzed %d new messages", n)
			}
			return err
		})
	}

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
		httpapi.RateLimit(20, 40),
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.Serve(ln))
}
