// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sort"
	"sync"

	"refinery/internal/domain"
)

// === Batch Run Repository Mock ===

// MockBatchRunRepo implements domain.BatchRunRepository for testing. By
// default it records runs and entity runs in memory so tests can assert on
// the state machine without a database; any Fn field overrides the default.
// The in-memory state is mutex-guarded because the batch controller writes
// from a background goroutine.
type MockBatchRunRepo struct {
	CreateRunFn             func(ctx context.Context, run *domain.BatchRun) error
	MarkRunStartedFn        func(ctx context.Context, id string) error
	MarkRunFinishedFn       func(ctx context.Context, run *domain.BatchRun) error
	CreateEntityRunFn       func(ctx context.Context, er *domain.EntityRun) error
	MarkEntityRunFinishedFn func(ctx context.Context, er *domain.EntityRun) error
	GetRunFn                func(ctx context.Context, id string) (*domain.BatchRun, error)
	ListRunsFn              func(ctx context.Context, filter domain.RunFilter) ([]domain.BatchRun, error)
	ListEntityRunsFn        func(ctx context.Context, runID string) ([]domain.EntityRun, error)
	CountActiveRunsFn       func(ctx context.Context) (int64, error)
	FailActiveRunsFn        func(ctx context.Context, message string) (int64, error)

	mu         sync.Mutex
	runs       map[string]*domain.BatchRun
	entityRuns []*domain.EntityRun
}

// CreateRun implements the interface method for testing.
func (m *MockBatchRunRepo) CreateRun(ctx context.Context, run *domain.BatchRun) error {
	if m.CreateRunFn != nil {
		return m.CreateRunFn(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = make(map[string]*domain.BatchRun)
	}
	stored := *run
	m.runs[run.ID] = &stored
	return nil
}

// MarkRunStarted implements the interface method for testing.
func (m *MockBatchRunRepo) MarkRunStarted(ctx context.Context, id string) error {
	if m.MarkRunStartedFn != nil {
		return m.MarkRunStartedFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return domain.ErrNotFound("batch run %s not found", id)
	}
	run.Status = domain.RunStatusRunning
	return nil
}

// MarkRunFinished implements the interface method for testing.
func (m *MockBatchRunRepo) MarkRunFinished(ctx context.Context, run *domain.BatchRun) error {
	if m.MarkRunFinishedFn != nil {
		return m.MarkRunFinishedFn(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.runs[run.ID]
	if !ok {
		return domain.ErrNotFound("batch run %s not found", run.ID)
	}
	stored.Status = run.Status
	stored.SourceRows = run.SourceRows
	stored.AcceptedRows = run.AcceptedRows
	stored.RejectedRows = run.RejectedRows
	stored.ErrorMessage = run.ErrorMessage
	stored.FinishedAt = run.FinishedAt
	return nil
}

// CreateEntityRun implements the interface method for testing.
func (m *MockBatchRunRepo) CreateEntityRun(ctx context.Context, er *domain.EntityRun) error {
	if m.CreateEntityRunFn != nil {
		return m.CreateEntityRunFn(ctx, er)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *er
	m.entityRuns = append(m.entityRuns, &stored)
	return nil
}

// MarkEntityRunFinished implements the interface method for testing.
func (m *MockBatchRunRepo) MarkEntityRunFinished(ctx context.Context, er *domain.EntityRun) error {
	if m.MarkEntityRunFinishedFn != nil {
		return m.MarkEntityRunFinishedFn(ctx, er)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, stored := range m.entityRuns {
		if stored.RunID == er.RunID && stored.Entity == er.Entity {
			updated := *er
			m.entityRuns[i] = &updated
			return nil
		}
	}
	return domain.ErrNotFound("entity run %s not found", er.ID)
}

// GetRun implements the interface method for testing.
func (m *MockBatchRunRepo) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	if m.GetRunFn != nil {
		return m.GetRunFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound("batch run %s not found", id)
	}
	copied := *run
	for _, er := range m.entityRuns {
		if er.RunID == id {
			copied.Entities = append(copied.Entities, *er)
		}
	}
	return &copied, nil
}

// ListRuns implements the interface method for testing.
func (m *MockBatchRunRepo) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.BatchRun, error) {
	if m.ListRunsFn != nil {
		return m.ListRunsFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BatchRun
	for _, run := range m.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		out = append(out, *run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListEntityRuns implements the interface method for testing.
func (m *MockBatchRunRepo) ListEntityRuns(ctx context.Context, runID string) ([]domain.EntityRun, error) {
	if m.ListEntityRunsFn != nil {
		return m.ListEntityRunsFn(ctx, runID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EntityRun
	for _, er := range m.entityRuns {
		if er.RunID == runID {
			out = append(out, *er)
		}
	}
	return out, nil
}

// CountActiveRuns implements the interface method for testing.
func (m *MockBatchRunRepo) CountActiveRuns(ctx context.Context) (int64, error) {
	if m.CountActiveRunsFn != nil {
		return m.CountActiveRunsFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, run := range m.runs {
		if run.Active() {
			n++
		}
	}
	return n, nil
}

// FailActiveRuns implements the interface method for testing.
func (m *MockBatchRunRepo) FailActiveRuns(ctx context.Context, message string) (int64, error) {
	if m.FailActiveRunsFn != nil {
		return m.FailActiveRunsFn(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, run := range m.runs {
		if run.Active() {
			run.Status = domain.RunStatusFailed
			msg := message
			run.ErrorMessage = &msg
			n++
		}
	}
	return n, nil
}

// Run returns a copy of the stored run, or nil if absent.
func (m *MockBatchRunRepo) Run(id string) *domain.BatchRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil
	}
	copied := *run
	return &copied
}

// EntityRunsFor returns copies of the recorded entity runs for a run, in
// creation order.
func (m *MockBatchRunRepo) EntityRunsFor(runID string) []domain.EntityRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EntityRun
	for _, er := range m.entityRuns {
		if er.RunID == runID {
			out = append(out, *er)
		}
	}
	return out
}

var _ domain.BatchRunRepository = (*MockBatchRunRepo)(nil)

// === Staging Reader Mock ===

// MockStagingReader implements domain.StagingReader for testing.
type MockStagingReader struct {
	SnapshotFn func(ctx context.Context, entity domain.Entity) ([]domain.RawRecord, error)
}

// Snapshot implements the interface method for testing.
func (m *MockStagingReader) Snapshot(ctx context.Context, entity domain.Entity) ([]domain.RawRecord, error) {
	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx, entity)
	}
	panic("unexpected call to MockStagingReader.Snapshot")
}

var _ domain.StagingReader = (*MockStagingReader)(nil)

// === Cleansed Writer Mock ===

// MockCleansedWriter implements domain.CleansedWriter for testing. It
// records every publish so tests can assert on accepted rows and rejects
// without DuckDB.
type MockCleansedWriter struct {
	ClearQuarantineFn func(ctx context.Context) error

	ClearCalls int
	Customers  []domain.Customer
	Products   []domain.Product
	SalesLines []domain.SalesLine
	Demo       []domain.CustomerDemo
	Locations  []domain.Location
	Categories []domain.Category
	Rejects    []domain.QuarantineRecord
}

// ClearQuarantine implements the interface method for testing.
func (m *MockCleansedWriter) ClearQuarantine(ctx context.Context) error {
	m.ClearCalls++
	if m.ClearQuarantineFn != nil {
		return m.ClearQuarantineFn(ctx)
	}
	m.Rejects = nil
	return nil
}

// PublishCustomers implements the interface method for testing.
func (m *MockCleansedWriter) PublishCustomers(ctx context.Context, rows []domain.Customer, rejects []domain.QuarantineRecord) error {
	m.Customers = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

// PublishProducts implements the interface method for testing.
func (m *MockCleansedWriter) PublishProducts(ctx context.Context, rows []domain.Product, rejects []domain.QuarantineRecord) error {
	m.Products = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

// PublishSalesLines implements the interface method for testing.
func (m *MockCleansedWriter) PublishSalesLines(ctx context.Context, rows []domain.SalesLine, rejects []domain.QuarantineRecord) error {
	m.SalesLines = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

// PublishCustomerDemo implements the interface method for testing.
func (m *MockCleansedWriter) PublishCustomerDemo(ctx context.Context, rows []domain.CustomerDemo, rejects []domain.QuarantineRecord) error {
	m.Demo = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

// PublishLocations implements the interface method for testing.
func (m *MockCleansedWriter) PublishLocations(ctx context.Context, rows []domain.Location, rejects []domain.QuarantineRecord) error {
	m.Locations = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

// PublishCategories implements the interface method for testing.
func (m *MockCleansedWriter) PublishCategories(ctx context.Context, rows []domain.Category, rejects []domain.QuarantineRecord) error {
	m.Categories = rows
	m.Rejects = append(m.Rejects, rejects...)
	return nil
}

var _ domain.CleansedWriter = (*MockCleansedWriter)(nil)

// === Quarantine Reader Mock ===

// MockQuarantineReader implements domain.QuarantineReader for testing.
type MockQuarantineReader struct {
	ListFn    func(ctx context.Context, filter domain.QuarantineFilter) ([]domain.QuarantineRecord, error)
	SummaryFn func(ctx context.Context) ([]domain.QuarantineCount, error)
}

// List implements the interface method for testing.
func (m *MockQuarantineReader) List(ctx context.Context, filter domain.QuarantineFilter) ([]domain.QuarantineRecord, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	panic("unexpected call to MockQuarantineReader.List")
}

// Summary implements the interface method for testing.
func (m *MockQuarantineReader) Summary(ctx context.Context) ([]domain.QuarantineCount, error) {
	if m.SummaryFn != nil {
		return m.SummaryFn(ctx)
	}
	panic("unexpected call to MockQuarantineReader.Summary")
}

var _ domain.QuarantineReader = (*MockQuarantineReader)(nil)

// === Entity Processor Mock ===

// MockEntityProcessor implements domain.EntityProcessor for testing. The
// default returns a conserved zero result; set ProcessEntityFn to script
// per-entity outcomes.
type MockEntityProcessor struct {
	ProcessEntityFn func(ctx context.Context, runID string, entity domain.Entity) (domain.EntityResult, error)

	mu        sync.Mutex
	processed []domain.Entity
}

// ProcessEntity implements the interface method for testing.
func (m *MockEntityProcessor) ProcessEntity(ctx context.Context, runID string, entity domain.Entity) (domain.EntityResult, error) {
	m.mu.Lock()
	m.processed = append(m.processed, entity)
	m.mu.Unlock()
	if m.ProcessEntityFn != nil {
		return m.ProcessEntityFn(ctx, runID, entity)
	}
	return domain.EntityResult{Entity: entity}, nil
}

// Processed returns the entities processed so far, in call order.
func (m *MockEntityProcessor) Processed() []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Entity(nil), m.processed...)
}

var _ domain.EntityProcessor = (*MockEntityProcessor)(nil)
