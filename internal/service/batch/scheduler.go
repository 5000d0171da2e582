package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"refinery/internal/domain"
)

// Scheduler triggers batch runs on a cron schedule. A fire that lands while
// a run is still in progress is skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	svc    *Service
	spec   string
	logger *slog.Logger
}

// NewScheduler creates a scheduler for the given cron spec. An empty spec
// disables scheduling.
func NewScheduler(svc *Service, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), svc: svc, spec: spec, logger: logger}
}

// Start validates the schedule and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		ctx := context.Background()
		_, triggerErr := s.svc.Trigger(ctx, domain.TriggerTypeScheduled, "scheduler")
		if triggerErr != nil {
			var conflict *domain.ConflictError
			if errors.As(triggerErr, &conflict) {
				s.logger.Warn("skipping scheduled run, previous run still in progress")
				return
			}
			s.logger.Error("scheduled trigger failed", "error", triggerErr)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("batch scheduler started", "schedule", s.spec)
	return nil
}

// Stop gracefully stops the cron loop. Safe to call when Start was a no-op.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	if s.spec != "" {
		s.logger.Info("batch scheduler stopped")
	}
}
