package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"refinery/internal/domain"
)

// Compile-time check.
var _ domain.QuarantineReader = (*Quarantine)(nil)

// Quarantine serves quarantine listings to the API, CLI, and status page.
type Quarantine struct {
	db *sql.DB
}

// NewQuarantine creates a quarantine reader on the warehouse.
func NewQuarantine(db *sql.DB) *Quarantine {
	return &Quarantine{db: db}
}

// List returns quarantined records, optionally narrowed by entity and
// reason, in capture order per entity.
func (q *Quarantine) List(ctx context.Context, filter domain.QuarantineFilter) ([]domain.QuarantineRecord, error) {
	query := `SELECT id, run_id, entity, field, reason, payload, captured_at FROM quarantine.records`
	var conds []string
	var args []any
	if filter.Entity != "" {
		conds = append(conds, "entity = ?")
		args = append(args, string(filter.Entity))
	}
	if filter.Reason != "" {
		conds = append(conds, "reason = ?")
		args = append(args, filter.Reason)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY entity, id LIMIT ?"
	args = append(args, limit)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quarantine: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.QuarantineRecord
	for rows.Next() {
		var (
			rec     domain.QuarantineRecord
			entity  string
			payload string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &entity, &rec.Field, &rec.Reason,
			&payload, &rec.CapturedAt); err != nil {
			return nil, fmt.Errorf("list quarantine: %w", err)
		}
		rec.Entity = domain.Entity(entity)
		if payload != "" && payload != "null" {
			if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
				return nil, fmt.Errorf("list quarantine: payload: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary returns record counts grouped by entity and reason.
func (q *Quarantine) Summary(ctx context.Context) ([]domain.QuarantineCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT entity, reason, count(*) FROM quarantine.records
		GROUP BY entity, reason ORDER BY entity, reason`)
	if err != nil {
		return nil, fmt.Errorf("quarantine summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []domain.QuarantineCount
	for rows.Next() {
		var (
			c      domain.QuarantineCount
			entity string
		)
		if err := rows.Scan(&entity, &c.Reason, &c.Count); err != nil {
			return nil, fmt.Errorf("quarantine summary: %w", err)
		}
		c.Entity = domain.Entity(entity)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
