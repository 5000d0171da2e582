package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"refinery/internal/config"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, status pages, and batch scheduler",
		Long: "Starts the engine as a long-running server: the JSON API under /v1, the " +
			"status pages at /, and the cron scheduler when BATCH_SCHEDULE is set. " +
			"Runs left over from a crashed process are failed at startup.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}

			cfg, err := loadCLIConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}

			opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
			var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
			if cfg.IsProduction() {
				handler = slog.NewJSONHandler(os.Stderr, opts)
			}
			logger := slog.New(handler)
			slog.SetDefault(logger)
			for _, warning := range cfg.Warnings {
				logger.Warn(warning)
			}

			return runServer(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides LISTEN_ADDR)")

	return cmd
}

func runServer(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, cleanup, err := openAppWithConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// The server is the engine's exclusive owner while it lives, so anything
	// still PENDING or RUNNING in the control store was interrupted.
	if _, err := a.Batch.RecoverInterrupted(ctx); err != nil {
		return err
	}

	if err := a.Scheduler.Start(); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
