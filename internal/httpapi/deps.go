package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	IntakeStatus *atomic.Value // stores httpapi.IntakeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Intake entrypoint (injected for testability)
	RunIntake func(ctx context.Context, db *sql.DB, cfg config.Config, onAnalyzed func(id int64)) (analyzed int, err error)
}
