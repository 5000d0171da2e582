package domain

import "time"

// Batch run status constants. A run is the unit of the state machine:
// PENDING → RUNNING → COMPLETED | FAILED.
const (
	RunStatusPending   = "PENDING"
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"

	EntityStatusRunning   = "RUNNING"
	EntityStatusCompleted = "COMPLETED"
	EntityStatusFailed    = "FAILED"
	EntityStatusSkipped   = "SKIPPED"

	TriggerTypeManual    = "MANUAL"
	TriggerTypeScheduled = "SCHEDULED"
	TriggerTypeAPI       = "API"
)

// BatchRun is one execution of the engine over all entities, with aggregate
// counts. Entities is hydrated on reads that ask for per-entity detail.
type BatchRun struct {
	ID           string
	Status       string
	TriggerType  string
	TriggeredBy  string
	SourceRows   int64
	AcceptedRows int64
	RejectedRows int64
	StartedAt    *time.Time
	FinishedAt   *time.Time
	ErrorMessage *string
	CreatedAt    time.Time
	Entities     []EntityRun
}

// Elapsed returns the wall-clock duration of the run, or zero while the run
// has not finished.
func (r *BatchRun) Elapsed() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// Active reports whether the run still holds the engine.
func (r *BatchRun) Active() bool {
	return r.Status == RunStatusPending || r.Status == RunStatusRunning
}

// EntityRun records the outcome of one entity within a batch run.
type EntityRun struct {
	ID            string
	RunID         string
	Entity        Entity
	Position      int
	Status        string
	SourceRows    int64
	AcceptedRows  int64
	RejectedRows  int64
	RejectReasons map[string]int64
	StartedAt     *time.Time
	FinishedAt    *time.Time
	ErrorMessage  *string
}

// Elapsed returns the processing duration for this entity, or zero while it
// has not finished.
func (e *EntityRun) Elapsed() time.Duration {
	if e.StartedAt == nil || e.FinishedAt == nil {
		return 0
	}
	return e.FinishedAt.Sub(*e.StartedAt)
}

// EntityResult is the quality gate's in-memory outcome for one entity.
type EntityResult struct {
	Entity        Entity
	SourceRows    int64
	AcceptedRows  int64
	RejectedRows  int64
	RejectReasons map[string]int64
}

// Conserved reports the mass-conservation invariant: every source row is
// either accepted or rejected, never both, never dropped.
func (r EntityResult) Conserved() bool {
	return r.AcceptedRows+r.RejectedRows == r.SourceRows
}

// RunFilter narrows run listings.
type RunFilter struct {
	Status string // empty = all statuses
	Limit  int    // <=0 = default
}
