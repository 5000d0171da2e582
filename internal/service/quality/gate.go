// Package quality implements the quality gate: the only path from raw
// staging into the cleansed store. For each entity it snapshots staging,
// applies the rule set, resolves duplicates, and publishes the survivors and
// the quarantined rejects in one atomic replace.
package quality

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"refinery/internal/dedupe"
	"refinery/internal/domain"
	"refinery/internal/rules"
)

// Service runs the gate for single entities. The batch controller owns
// ordering and run state; this service owns row-level semantics.
type Service struct {
	staging domain.StagingReader
	store   domain.CleansedWriter
	logger  *slog.Logger

	// strict fails an entity on the first unparsable value instead of
	// quarantining the row.
	strict bool
}

// NewService creates a quality gate.
func NewService(staging domain.StagingReader, store domain.CleansedWriter, logger *slog.Logger, strict bool) *Service {
	return &Service{staging: staging, store: store, logger: logger, strict: strict}
}

// ProcessEntity runs one entity through the gate and returns its counts.
// Every source row ends up accepted or rejected; a result that violates that
// is reported as an error and fails the entity.
func (s *Service) ProcessEntity(ctx context.Context, runID string, entity domain.Entity) (domain.EntityResult, error) {
	records, err := s.staging.Snapshot(ctx, entity)
	if err != nil {
		return domain.EntityResult{}, fmt.Errorf("snapshot %s: %w", entity, err)
	}

	sink := &rejectSink{runID: runID, entity: entity, strict: s.strict, reasons: map[string]int64{}}

	var accepted int
	switch entity {
	case domain.EntityCustomer:
		accepted, err = s.processCustomers(ctx, records, sink)
	case domain.EntityProduct:
		accepted, err = s.processProducts(ctx, records, sink)
	case domain.EntitySalesLine:
		accepted, err = s.processSalesLines(ctx, records, sink)
	case domain.EntityCustomerDemo:
		accepted, err = s.processCustomerDemo(ctx, records, sink)
	case domain.EntityLocation:
		accepted, err = s.processLocations(ctx, records, sink)
	case domain.EntityCategory:
		accepted, err = s.processCategories(ctx, records, sink)
	default:
		return domain.EntityResult{}, domain.ErrValidation("unknown entity %q", entity)
	}
	if err != nil {
		return domain.EntityResult{}, err
	}

	result := domain.EntityResult{
		Entity:        entity,
		SourceRows:    int64(len(records)),
		AcceptedRows:  int64(accepted),
		RejectedRows:  int64(len(sink.records)),
		RejectReasons: sink.reasons,
	}
	if !result.Conserved() {
		return result, fmt.Errorf("row conservation violated for %s: %d accepted + %d rejected, %d source",
			entity, result.AcceptedRows, result.RejectedRows, result.SourceRows)
	}

	s.logger.Info("entity processed",
		"entity", entity,
		"source_rows", result.SourceRows,
		"accepted", result.AcceptedRows,
		"rejected", result.RejectedRows)
	return result, nil
}

func (s *Service) processCustomers(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	var (
		rows    []domain.Customer
		sources []domain.RawRecord
		members []dedupe.Member
	)
	for _, rec := range records {
		c, rej := rules.NormalizeCustomer(rec)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		members = append(members, dedupe.Member{
			Index:   len(rows),
			Key:     strconv.FormatInt(c.ID, 10),
			OrderBy: c.CreatedDate,
		})
		rows = append(rows, c)
		sources = append(sources, rec)
	}

	winners, losers := dedupe.LatestByDate(members)
	for _, i := range losers {
		sink.rejectDuplicate(sources[i], domain.ReasonDuplicate)
	}

	kept := pick(rows, winners)
	if err := s.store.PublishCustomers(ctx, kept, sink.records); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *Service) processProducts(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	var (
		rows    []domain.Product
		sources []domain.RawRecord
		members []dedupe.Member
	)
	for _, rec := range records {
		p, rej := rules.NormalizeProduct(rec)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		members = append(members, dedupe.Member{
			Index: len(rows),
			Key:   strconv.FormatInt(p.ID, 10),
		})
		rows = append(rows, p)
		sources = append(sources, rec)
	}

	winners, losers := dedupe.RejectAllOnConflict(members)
	for _, i := range losers {
		sink.rejectDuplicate(sources[i], domain.ReasonDuplicateID)
	}

	kept := pick(rows, winners)
	// End dates are derived from the surviving versions, never from source.
	rules.RebuildProductTimeline(kept)

	if err := s.store.PublishProducts(ctx, kept, sink.records); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *Service) processSalesLines(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	var rows []domain.SalesLine
	for _, rec := range records {
		l, rej := rules.NormalizeSalesLine(rec)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		rows = append(rows, l)
	}

	if err := s.store.PublishSalesLines(ctx, rows, sink.records); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) processCustomerDemo(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	today := time.Now().UTC()
	var (
		rows    []domain.CustomerDemo
		sources []domain.RawRecord
		members []dedupe.Member
	)
	for _, rec := range records {
		d, rej := rules.NormalizeCustomerDemo(rec, today)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		members = append(members, dedupe.Member{Index: len(rows), Key: d.CustomerNumber})
		rows = append(rows, d)
		sources = append(sources, rec)
	}

	winners, losers := dedupe.RejectAllOnConflict(members)
	for _, i := range losers {
		sink.rejectDuplicate(sources[i], domain.ReasonDuplicateID)
	}

	kept := pick(rows, winners)
	if err := s.store.PublishCustomerDemo(ctx, kept, sink.records); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *Service) processLocations(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	var (
		rows    []domain.Location
		sources []domain.RawRecord
		members []dedupe.Member
	)
	for _, rec := range records {
		l, rej := rules.NormalizeLocation(rec)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		members = append(members, dedupe.Member{Index: len(rows), Key: l.CustomerNumber})
		rows = append(rows, l)
		sources = append(sources, rec)
	}

	winners, losers := dedupe.RejectAllOnConflict(members)
	for _, i := range losers {
		sink.rejectDuplicate(sources[i], domain.ReasonDuplicateID)
	}

	kept := pick(rows, winners)
	if err := s.store.PublishLocations(ctx, kept, sink.records); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *Service) processCategories(ctx context.Context, records []domain.RawRecord, sink *rejectSink) (int, error) {
	var (
		rows    []domain.Category
		sources []domain.RawRecord
		members []dedupe.Member
	)
	for _, rec := range records {
		c, rej := rules.NormalizeCategory(rec)
		if rej != nil {
			if err := sink.reject(rec, rej); err != nil {
				return 0, err
			}
			continue
		}
		members = append(members, dedupe.Member{Index: len(rows), Key: c.ID})
		rows = append(rows, c)
		sources = append(sources, rec)
	}

	winners, losers := dedupe.RejectAllOnConflict(members)
	for _, i := range losers {
		sink.rejectDuplicate(sources[i], domain.ReasonDuplicateID)
	}

	kept := pick(rows, winners)
	if err := s.store.PublishCategories(ctx, kept, sink.records); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// rejectSink accumulates one entity's quarantine records and reason tallies.
type rejectSink struct {
	runID   string
	entity  domain.Entity
	strict  bool
	records []domain.QuarantineRecord
	reasons map[string]int64
}

// reject quarantines a row turned away by the rules. In strict mode an
// unparsable value aborts the entity instead.
func (k *rejectSink) reject(raw domain.RawRecord, rej *rules.Rejection) error {
	if k.strict && rej.Reason == domain.ReasonUnparsable {
		return domain.ErrValidation("strict types: unparsable %s value in %s staging", rej.Field, k.entity)
	}
	k.add(raw, rej.Field, rej.Reason)
	return nil
}

// rejectDuplicate quarantines a dedup loser. Duplicates are never fatal,
// strict mode or not.
func (k *rejectSink) rejectDuplicate(raw domain.RawRecord, reason string) {
	k.add(raw, "id", reason)
}

func (k *rejectSink) add(raw domain.RawRecord, field, reason string) {
	k.records = append(k.records, domain.QuarantineRecord{
		RunID:   k.runID,
		Entity:  k.entity,
		Field:   field,
		Reason:  reason,
		Payload: raw.Fields,
	})
	k.reasons[reason]++
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}
