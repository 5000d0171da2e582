package domain

import "context"

// StagingReader reads the raw staging area. The ingestion loader owns staging
// content; the engine only ever snapshots it.
type StagingReader interface {
	// Snapshot returns every staging row for the entity as untyped text.
	Snapshot(ctx context.Context, entity Entity) ([]RawRecord, error)
}

// CleansedWriter owns the cleansed store and the quarantine sink during a
// run. Each Publish call atomically replaces one entity's cleansed table with
// the accepted rows and appends that entity's rejects to the sink; on error
// the previous table contents survive untouched.
type CleansedWriter interface {
	// ClearQuarantine empties the sink. Called once at the start of a run.
	ClearQuarantine(ctx context.Context) error

	PublishCustomers(ctx context.Context, rows []Customer, rejects []QuarantineRecord) error
	PublishProducts(ctx context.Context, rows []Product, rejects []QuarantineRecord) error
	PublishSalesLines(ctx context.Context, rows []SalesLine, rejects []QuarantineRecord) error
	PublishCustomerDemo(ctx context.Context, rows []CustomerDemo, rejects []QuarantineRecord) error
	PublishLocations(ctx context.Context, rows []Location, rejects []QuarantineRecord) error
	PublishCategories(ctx context.Context, rows []Category, rejects []QuarantineRecord) error
}

// QuarantineReader serves quarantine listings to the API, CLI, and status
// page.
type QuarantineReader interface {
	List(ctx context.Context, filter QuarantineFilter) ([]QuarantineRecord, error)
	Summary(ctx context.Context) ([]QuarantineCount, error)
}

// EntityProcessor runs the quality gate for one entity and reports its
// counts. The batch controller drives it across the fixed entity order.
type EntityProcessor interface {
	ProcessEntity(ctx context.Context, runID string, entity Entity) (EntityResult, error)
}

// BatchRunRepository persists batch run history in the control store.
type BatchRunRepository interface {
	CreateRun(ctx context.Context, run *BatchRun) error
	// MarkRunStarted transitions a run to RUNNING and stamps started_at.
	MarkRunStarted(ctx context.Context, id string) error
	// MarkRunFinished writes the final status, aggregate counts, error
	// message, and finished_at from the run struct.
	MarkRunFinished(ctx context.Context, run *BatchRun) error

	CreateEntityRun(ctx context.Context, er *EntityRun) error
	// MarkEntityRunFinished writes the final status, counts, reject reasons,
	// error message, and finished_at from the entity run struct.
	MarkEntityRunFinished(ctx context.Context, er *EntityRun) error

	GetRun(ctx context.Context, id string) (*BatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]BatchRun, error)
	ListEntityRuns(ctx context.Context, runID string) ([]EntityRun, error)
	// CountActiveRuns returns the number of PENDING or RUNNING runs.
	CountActiveRuns(ctx context.Context) (int64, error)
	// FailActiveRuns marks every PENDING or RUNNING run as FAILED with the
	// given message. Used at startup to clean up runs interrupted by a crash
	// or shutdown.
	FailActiveRuns(ctx context.Context, message string) (int64, error)
}
