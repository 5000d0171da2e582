package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"refinery/internal/app"
	"refinery/internal/config"
	"refinery/internal/db"
	"refinery/internal/warehouse"
)

// loadCLIConfig loads configuration from the environment and applies the
// root flags on top. A path flag wins when it was set explicitly or resolved
// from the CLI env vars or a profile; otherwise the server-style env vars
// (WAREHOUSE_PATH, CONTROL_DB_PATH) stand.
func loadCLIConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	pf := cmd.Root().PersistentFlags()
	if v, _ := pf.GetString("warehouse"); pf.Changed("warehouse") || v != defaultWarehousePath {
		cfg.WarehousePath = v
	}
	if v, _ := pf.GetString("control-db"); pf.Changed("control-db") || v != defaultControlDBPath {
		cfg.ControlDBPath = v
	}

	return cfg, nil
}

// openAppWithConfig opens the warehouse and control databases and wires the
// application on top of them. The returned cleanup closes both stores and
// must be called when the command is done.
func openAppWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, func(), error) {
	warehouseDB, err := warehouse.Open(cfg.WarehousePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open warehouse: %w", err)
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.ControlDBPath, 0)
	if err != nil {
		_ = warehouseDB.Close()
		return nil, nil, fmt.Errorf("open control store: %w", err)
	}

	cleanup := func() {
		_ = readDB.Close()
		_ = writeDB.Close()
		_ = warehouseDB.Close()
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:          cfg,
		Warehouse:    warehouseDB,
		ControlWrite: writeDB,
		ControlRead:  readDB,
		Logger:       logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return a, cleanup, nil
}

// openApp is the one-shot command path: resolve config, open the stores,
// wire the app.
func openApp(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) (*app.App, func(), error) {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return openAppWithConfig(ctx, cfg, logger)
}

// newQuietLogger returns a logger for one-shot commands. It only surfaces
// warnings so table and JSON output on stdout stays clean.
func newQuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
