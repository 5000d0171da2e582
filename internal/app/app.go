// Package app provides application-level wiring and dependency injection
// for the refinery engine.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"refinery/internal/api"
	"refinery/internal/config"
	"refinery/internal/db"
	"refinery/internal/db/repository"
	"refinery/internal/domain"
	"refinery/internal/service/batch"
	"refinery/internal/service/quality"
	"refinery/internal/ui"
	"refinery/internal/warehouse"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg          *config.Config
	Warehouse    *sql.DB
	ControlWrite *sql.DB
	ControlRead  *sql.DB
	Logger       *slog.Logger
}

// App holds the fully-wired application. The batch service and scheduler
// drive processing; the router serves the API and status pages.
type App struct {
	Batch     *batch.Service
	Scheduler *batch.Scheduler
	Gate      *quality.Service

	// Runs and Quarantine serve history reads for the API, UI, and CLI.
	Runs       domain.BatchRunRepository
	Quarantine domain.QuarantineReader

	Router http.Handler
}

// New wires repositories, services, and the HTTP surface from the provided
// deps. It migrates the control store and ensures the warehouse schema.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Control store (SQLite) ===
	if err := db.RunMigrations(deps.ControlWrite); err != nil {
		return nil, fmt.Errorf("migrate control store: %w", err)
	}
	writeRuns := repository.NewBatchRunRepo(deps.ControlWrite)
	readRuns := repository.NewBatchRunRepo(deps.ControlRead)

	// === Warehouse (DuckDB) ===
	if err := warehouse.EnsureSchema(ctx, deps.Warehouse); err != nil {
		return nil, fmt.Errorf("ensure warehouse schema: %w", err)
	}
	staging := warehouse.NewStaging(deps.Warehouse)
	store := warehouse.NewStore(deps.Warehouse)
	quarantine := warehouse.NewQuarantine(deps.Warehouse)

	// === Quality gate + batch controller ===
	gate := quality.NewService(staging, store, deps.Logger.With("component", "quality-gate"), cfg.StrictTypes)
	batchSvc := batch.NewService(writeRuns, gate, store, deps.Logger.With("component", "batch"))
	scheduler := batch.NewScheduler(batchSvc, cfg.BatchSchedule, deps.Logger.With("component", "scheduler"))

	// === HTTP surface ===
	apiHandler := api.NewHandler(batchSvc, readRuns, quarantine, deps.Logger.With("component", "api"))
	uiHandler := ui.NewHandler(readRuns, quarantine)
	router := api.NewRouter(cfg, apiHandler, func(r chi.Router) {
		ui.MountRoutes(r, uiHandler)
	})

	return &App{
		Batch:      batchSvc,
		Scheduler:  scheduler,
		Gate:       gate,
		Runs:       readRuns,
		Quarantine: quarantine,
		Router:     router,
	}, nil
}
