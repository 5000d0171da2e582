package warehouse

import (
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"fmt"
	"strings"

	"refinery/internal/domain"
)

//go:embed fixtures/*.csv
var fixtureFS embed.FS

// Seed replaces the staging area with the embedded demo extract. The
// fixtures deliberately carry every defect the rules handle: missing keys,
// unparsable values, duplicate keys, inconsistent dates, and broken
// financials. Seeding stands in for the external loaders during demos and
// tests.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, entity := range domain.EntityOrder {
		if err := seedEntity(ctx, db, entity); err != nil {
			return err
		}
	}
	return nil
}

func seedEntity(ctx context.Context, db *sql.DB, entity domain.Entity) error {
	table := stagingTables[entity]
	name := strings.TrimPrefix(table.name, "staging.")

	f, err := fixtureFS.Open("fixtures/" + name + ".csv")
	if err != nil {
		return fmt.Errorf("seed %s: %w", entity, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(table.columns)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("seed %s: read csv: %w", entity, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("seed %s: fixture is empty", entity)
	}

	// The header row must match the staging columns exactly; a drifted
	// fixture fails loudly instead of loading fields into the wrong place.
	for i, col := range table.columns {
		if records[0][i] != col {
			return fmt.Errorf("seed %s: fixture column %d is %q, want %q", entity, i, records[0][i], col)
		}
	}

	values := make([][]any, len(records)-1)
	for i, row := range records[1:] {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed %s: begin: %w", entity, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table.name); err != nil {
		return fmt.Errorf("seed %s: clear: %w", entity, err)
	}
	columns := "(" + strings.Join(table.columns, ", ") + ")"
	if err := insertRows(ctx, tx, table.name, columns, len(table.columns), values); err != nil {
		return fmt.Errorf("seed %s: insert: %w", entity, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed %s: commit: %w", entity, err)
	}
	return nil
}
