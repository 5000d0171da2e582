package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"refinery/internal/domain"
)

// Compile-time check.
var _ domain.BatchRunRepository = (*BatchRunRepo)(nil)

// BatchRunRepo implements domain.BatchRunRepository against the SQLite
// control store.
type BatchRunRepo struct {
	db *sql.DB
}

// NewBatchRunRepo creates a new BatchRunRepo on the given pool.
func NewBatchRunRepo(db *sql.DB) *BatchRunRepo {
	return &BatchRunRepo{db: db}
}

// CreateRun inserts a new batch run. A blank ID is assigned here.
func (r *BatchRunRepo) CreateRun(ctx context.Context, run *domain.BatchRun) error {
	if run.ID == "" {
		run.ID = domain.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batch_runs (id, status, trigger_type, triggered_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Status, run.TriggerType, run.TriggeredBy, run.CreatedAt)
	return mapDBError(err)
}

// MarkRunStarted transitions a run to RUNNING and stamps started_at.
func (r *BatchRunRepo) MarkRunStarted(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE batch_runs SET status = ?, started_at = ? WHERE id = ?`,
		domain.RunStatusRunning, time.Now().UTC(), id)
	return rowsOrNotFound(res, err)
}

// MarkRunFinished writes the final status, aggregate counts, error message,
// and finished_at from the run struct.
func (r *BatchRunRepo) MarkRunFinished(ctx context.Context, run *domain.BatchRun) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE batch_runs
		SET status = ?, source_rows = ?, accepted_rows = ?, rejected_rows = ?,
		    error_message = ?, finished_at = ?
		WHERE id = ?`,
		run.Status, run.SourceRows, run.AcceptedRows, run.RejectedRows,
		run.ErrorMessage, run.FinishedAt, run.ID)
	return rowsOrNotFound(res, err)
}

// CreateEntityRun inserts one entity's slot in a run. A blank ID is assigned
// here.
func (r *BatchRunRepo) CreateEntityRun(ctx context.Context, er *domain.EntityRun) error {
	if er.ID == "" {
		er.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entity_runs (id, run_id, entity, position, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		er.ID, er.RunID, er.Entity, er.Position, er.Status, er.StartedAt)
	return mapDBError(err)
}

// MarkEntityRunFinished writes the final status, counts, reject reasons,
// error message, and finished_at from the entity run struct.
func (r *BatchRunRepo) MarkEntityRunFinished(ctx context.Context, er *domain.EntityRun) error {
	reasons, err := marshalReasons(er.RejectReasons)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE entity_runs
		SET status = ?, source_rows = ?, accepted_rows = ?, rejected_rows = ?,
		    reject_reasons = ?, error_message = ?, finished_at = ?
		WHERE id = ?`,
		er.Status, er.SourceRows, er.AcceptedRows, er.RejectedRows,
		reasons, er.ErrorMessage, er.FinishedAt, er.ID)
	return rowsOrNotFound(res, err)
}

// GetRun returns one batch run with its entity runs hydrated.
func (r *BatchRunRepo) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, trigger_type, triggered_by, source_rows, accepted_rows,
		       rejected_rows, started_at, finished_at, error_message, created_at
		FROM batch_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, mapDBError(err)
	}

	run.Entities, err = r.ListEntityRuns(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns recent runs, newest first, without entity detail.
func (r *BatchRunRepo) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.BatchRun, error) {
	query := `
		SELECT id, status, trigger_type, triggered_by, source_rows, accepted_rows,
		       rejected_rows, started_at, finished_at, error_message, created_at
		FROM batch_runs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer func() { _ = rows.Close() }()

	var runs []domain.BatchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListEntityRuns returns a run's entity runs in batch order.
func (r *BatchRunRepo) ListEntityRuns(ctx context.Context, runID string) ([]domain.EntityRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, entity, position, status, source_rows, accepted_rows,
		       rejected_rows, reject_reasons, started_at, finished_at, error_message
		FROM entity_runs WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer func() { _ = rows.Close() }()

	var ers []domain.EntityRun
	for rows.Next() {
		var (
			er       domain.EntityRun
			reasons  string
			started  sql.NullTime
			finished sql.NullTime
			errMsg   sql.NullString
		)
		if err := rows.Scan(&er.ID, &er.RunID, &er.Entity, &er.Position, &er.Status,
			&er.SourceRows, &er.AcceptedRows, &er.RejectedRows, &reasons,
			&started, &finished, &errMsg); err != nil {
			return nil, err
		}
		er.StartedAt = timePtr(started)
		er.FinishedAt = timePtr(finished)
		er.ErrorMessage = stringPtr(errMsg)
		er.RejectReasons, err = unmarshalReasons(reasons)
		if err != nil {
			return nil, err
		}
		ers = append(ers, er)
	}
	return ers, rows.Err()
}

// CountActiveRuns returns the number of PENDING or RUNNING runs.
func (r *BatchRunRepo) CountActiveRuns(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM batch_runs WHERE status IN (?, ?)`,
		domain.RunStatusPending, domain.RunStatusRunning).Scan(&n)
	return n, mapDBError(err)
}

// FailActiveRuns marks every PENDING or RUNNING run, and their RUNNING
// entity runs, as FAILED with the given message. Returns the number of runs
// failed.
func (r *BatchRunRepo) FailActiveRuns(ctx context.Context, message string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE entity_runs SET status = ?, error_message = ?, finished_at = ?
		WHERE status = ? AND run_id IN (SELECT id FROM batch_runs WHERE status IN (?, ?))`,
		domain.EntityStatusFailed, message, now,
		domain.EntityStatusRunning, domain.RunStatusPending, domain.RunStatusRunning)
	if err != nil {
		return 0, mapDBError(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE batch_runs SET status = ?, error_message = ?, finished_at = ?
		WHERE status IN (?, ?)`,
		domain.RunStatusFailed, message, now,
		domain.RunStatusPending, domain.RunStatusRunning)
	if err != nil {
		return 0, mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return n, tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.BatchRun, error) {
	var (
		run      domain.BatchRun
		started  sql.NullTime
		finished sql.NullTime
		errMsg   sql.NullString
	)
	err := row.Scan(&run.ID, &run.Status, &run.TriggerType, &run.TriggeredBy,
		&run.SourceRows, &run.AcceptedRows, &run.RejectedRows,
		&started, &finished, &errMsg, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.StartedAt = timePtr(started)
	run.FinishedAt = timePtr(finished)
	run.ErrorMessage = stringPtr(errMsg)
	return &run, nil
}

func marshalReasons(reasons map[string]int64) (string, error) {
	if len(reasons) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("marshal reject reasons: %w", err)
	}
	return string(b), nil
}

func unmarshalReasons(raw string) (map[string]int64, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var reasons map[string]int64
	if err := json.Unmarshal([]byte(raw), &reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reject reasons: %w", err)
	}
	return reasons, nil
}
