package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"refinery/internal/domain"
)

// Compile-time check.
var _ domain.StagingReader = (*Staging)(nil)

// Staging reads the raw staging area as untyped text.
type Staging struct {
	db *sql.DB
}

// NewStaging creates a staging reader on the warehouse.
func NewStaging(db *sql.DB) *Staging {
	return &Staging{db: db}
}

// Snapshot returns every staging row for the entity. NULL cells come back as
// empty strings; the rules treat blank and NULL alike.
func (s *Staging) Snapshot(ctx context.Context, entity domain.Entity) ([]domain.RawRecord, error) {
	table, ok := stagingTables[entity]
	if !ok {
		return nil, domain.ErrValidation("unknown entity %q", entity)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(table.columns, ", "), table.name)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", entity, err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.RawRecord
	cells := make([]sql.NullString, len(table.columns))
	dest := make([]any, len(table.columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", entity, err)
		}
		fields := make(map[string]string, len(table.columns))
		for i, col := range table.columns {
			fields[col] = cells[i].String
		}
		records = append(records, domain.RawRecord{Entity: entity, Fields: fields})
	}
	return records, rows.Err()
}
