// Package batch drives full engine runs: one pass over every entity in the
// fixed order, with run state persisted to the control store. Only one run
// may hold the engine at a time.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"refinery/internal/domain"
)

// Service is the batch run controller. It owns the single-flight guard, the
// entity ordering, and the run state machine; row-level semantics live in
// the quality gate.
type Service struct {
	runs   domain.BatchRunRepository
	gate   domain.EntityProcessor
	store  domain.CleansedWriter
	logger *slog.Logger

	running atomic.Bool
}

// NewService creates a batch run controller.
func NewService(runs domain.BatchRunRepository, gate domain.EntityProcessor, store domain.CleansedWriter, logger *slog.Logger) *Service {
	return &Service{runs: runs, gate: gate, store: store, logger: logger}
}

// RecoverInterrupted fails any runs left PENDING or RUNNING by a previous
// process and returns how many it failed. Called once at startup, before the
// scheduler or API can trigger new runs.
func (s *Service) RecoverInterrupted(ctx context.Context) (int64, error) {
	n, err := s.runs.FailActiveRuns(ctx, "interrupted by restart")
	if err != nil {
		return 0, fmt.Errorf("recover interrupted runs: %w", err)
	}
	if n > 0 {
		s.logger.Warn("failed interrupted runs from previous process", "count", n)
	}
	return n, nil
}

// Trigger creates a pending run and executes it in the background. It
// returns a conflict error while another run holds the engine, whether in
// this process or through the control store.
func (s *Service) Trigger(ctx context.Context, triggerType, triggeredBy string) (*domain.BatchRun, error) {
	run, err := s.acquire(ctx, triggerType, triggeredBy)
	if err != nil {
		return nil, err
	}
	go s.executeRun(context.Background(), run.ID)
	return run, nil
}

// Run executes a full batch synchronously and returns the finished run with
// per-entity detail. This is the CLI path.
func (s *Service) Run(ctx context.Context, triggerType, triggeredBy string) (*domain.BatchRun, error) {
	run, err := s.acquire(ctx, triggerType, triggeredBy)
	if err != nil {
		return nil, err
	}
	s.executeRun(ctx, run.ID)
	return s.runs.GetRun(ctx, run.ID)
}

// acquire takes the single-flight guard and creates the PENDING run row. On
// any error the guard is released.
func (s *Service) acquire(ctx context.Context, triggerType, triggeredBy string) (*domain.BatchRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrConflict("a batch run is already in progress")
	}

	// The control store may be shared with another process (server and CLI
	// pointed at the same paths), so the in-process guard is not enough.
	active, err := s.runs.CountActiveRuns(ctx)
	if err != nil {
		s.running.Store(false)
		return nil, fmt.Errorf("count active runs: %w", err)
	}
	if active > 0 {
		s.running.Store(false)
		return nil, domain.ErrConflict("a batch run is already in progress")
	}

	run := &domain.BatchRun{
		ID:          domain.NewID(),
		Status:      domain.RunStatusPending,
		TriggerType: triggerType,
		TriggeredBy: triggeredBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.running.Store(false)
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// executeRun processes every entity in order and finalizes the run status.
func (s *Service) executeRun(ctx context.Context, runID string) {
	logger := s.logger.With("run_id", runID)
	defer s.running.Store(false)

	// Recover from panics.
	defer func() {
		if r := recover(); r != nil {
			errMsg := fmt.Sprintf("panic: %v", r)
			logger.Error("batch run panicked", "error", errMsg)
			now := time.Now().UTC()
			_ = s.runs.MarkRunFinished(ctx, &domain.BatchRun{
				ID:           runID,
				Status:       domain.RunStatusFailed,
				ErrorMessage: &errMsg,
				FinishedAt:   &now,
			})
		}
	}()

	if err := s.runs.MarkRunStarted(ctx, runID); err != nil {
		logger.Error("failed to mark run started", "error", err)
		return
	}

	run := &domain.BatchRun{ID: runID}
	var runErr error

	// The quarantine sink holds exactly one run's rejects.
	if err := s.store.ClearQuarantine(ctx); err != nil {
		runErr = fmt.Errorf("clear quarantine: %w", err)
	}

	for i, entity := range domain.EntityOrder {
		er := &domain.EntityRun{
			ID:       domain.NewID(),
			RunID:    runID,
			Entity:   entity,
			Position: i,
		}

		if runErr != nil {
			// An earlier failure stops the run; record the rest as skipped.
			er.Status = domain.EntityStatusSkipped
			if err := s.runs.CreateEntityRun(ctx, er); err != nil {
				logger.Error("failed to record skipped entity", "entity", entity, "error", err)
			}
			continue
		}

		started := time.Now().UTC()
		er.Status = domain.EntityStatusRunning
		er.StartedAt = &started
		if err := s.runs.CreateEntityRun(ctx, er); err != nil {
			runErr = fmt.Errorf("record entity run for %s: %w", entity, err)
			continue
		}

		result, err := s.gate.ProcessEntity(ctx, runID, entity)
		finished := time.Now().UTC()
		er.FinishedAt = &finished
		er.SourceRows = result.SourceRows
		er.AcceptedRows = result.AcceptedRows
		er.RejectedRows = result.RejectedRows
		er.RejectReasons = result.RejectReasons

		if err != nil {
			msg := err.Error()
			er.Status = domain.EntityStatusFailed
			er.ErrorMessage = &msg
			runErr = fmt.Errorf("entity %s: %w", entity, err)
		} else {
			er.Status = domain.EntityStatusCompleted
			// Aggregate only committed entities: a failed entity published
			// nothing, so its counts describe work that was rolled back.
			run.SourceRows += result.SourceRows
			run.AcceptedRows += result.AcceptedRows
			run.RejectedRows += result.RejectedRows
		}
		if err := s.runs.MarkEntityRunFinished(ctx, er); err != nil {
			logger.Error("failed to record entity outcome", "entity", entity, "error", err)
		}
	}

	// Finalize run status.
	now := time.Now().UTC()
	run.FinishedAt = &now
	if runErr != nil {
		msg := runErr.Error()
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = &msg
	} else {
		run.Status = domain.RunStatusCompleted
	}
	if err := s.runs.MarkRunFinished(ctx, run); err != nil {
		logger.Error("failed to mark run finished", "error", err)
	}

	logger.Info("batch run finished",
		"status", run.Status,
		"source_rows", run.SourceRows,
		"accepted_rows", run.AcceptedRows,
		"rejected_rows", run.RejectedRows,
	)
}
