package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"refinery/internal/domain"
)

// Compile-time check.
var _ domain.CleansedWriter = (*Store)(nil)

// Store writes the cleansed tables and the quarantine sink. Each Publish
// call replaces one entity's cleansed table and appends that entity's
// rejects inside a single transaction, so a failed publish leaves the
// previous table contents untouched.
type Store struct {
	db *sql.DB
}

// NewStore creates a cleansed store writer on the warehouse.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ClearQuarantine empties the sink. The batch controller calls this once at
// the start of every run; quarantine content always reflects the latest run.
func (s *Store) ClearQuarantine(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quarantine.records`); err != nil {
		return fmt.Errorf("clear quarantine: %w", err)
	}
	return nil
}

func (s *Store) PublishCustomers(ctx context.Context, rows []domain.Customer, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, c := range rows {
		values[i] = []any{c.ID, c.CustomerNumber, c.FirstName, c.LastName,
			c.MaritalStatus, c.Gender, timeArg(c.CreatedDate), loaded}
	}
	return s.publish(ctx, domain.EntityCustomer, "cleansed.customers",
		"(id, customer_number, first_name, last_name, marital_status, gender, created_date, loaded_at)",
		8, values, rejects)
}

func (s *Store) PublishProducts(ctx context.Context, rows []domain.Product, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, p := range rows {
		values[i] = []any{p.ID, p.ProductNumber, p.CategoryID, p.Name, p.Cost,
			p.Line, timeArg(p.StartDate), timeArg(p.EndDate), loaded}
	}
	return s.publish(ctx, domain.EntityProduct, "cleansed.products",
		"(id, product_number, category_id, name, cost, line, start_date, end_date, loaded_at)",
		9, values, rejects)
}

func (s *Store) PublishSalesLines(ctx context.Context, rows []domain.SalesLine, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, l := range rows {
		values[i] = []any{l.OrderNumber, l.ProductNumber, intArg(l.CustomerID),
			timeArg(l.OrderDate), timeArg(l.ShipDate), timeArg(l.DueDate),
			l.Sales, l.Quantity, floatArg(l.Price), loaded}
	}
	return s.publish(ctx, domain.EntitySalesLine, "cleansed.sales_lines",
		"(order_number, product_number, customer_id, order_date, ship_date, due_date, sales, quantity, price, loaded_at)",
		10, values, rejects)
}

func (s *Store) PublishCustomerDemo(ctx context.Context, rows []domain.CustomerDemo, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, d := range rows {
		values[i] = []any{d.CustomerNumber, timeArg(d.BirthDate), d.Gender, loaded}
	}
	return s.publish(ctx, domain.EntityCustomerDemo, "cleansed.customer_demo",
		"(customer_number, birth_date, gender, loaded_at)", 4, values, rejects)
}

func (s *Store) PublishLocations(ctx context.Context, rows []domain.Location, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, l := range rows {
		values[i] = []any{l.CustomerNumber, l.Country, loaded}
	}
	return s.publish(ctx, domain.EntityLocation, "cleansed.locations",
		"(customer_number, country, loaded_at)", 3, values, rejects)
}

func (s *Store) PublishCategories(ctx context.Context, rows []domain.Category, rejects []domain.QuarantineRecord) error {
	loaded := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, c := range rows {
		values[i] = []any{c.ID, c.Category, c.Subcategory, c.Maintenance, loaded}
	}
	return s.publish(ctx, domain.EntityCategory, "cleansed.categories",
		"(id, category, subcategory, maintenance, loaded_at)", 5, values, rejects)
}

// publish runs the wholesale replace for one entity: delete, insert the
// accepted rows, append the rejects, commit.
func (s *Store) publish(ctx context.Context, entity domain.Entity, table, columns string, width int, rows [][]any, rejects []domain.QuarantineRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("publish %s: begin: %w", entity, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("publish %s: clear: %w", entity, err)
	}
	if err := insertRows(ctx, tx, table, columns, width, rows); err != nil {
		return fmt.Errorf("publish %s: insert: %w", entity, err)
	}
	if err := insertRejects(ctx, tx, rejects); err != nil {
		return fmt.Errorf("publish %s: quarantine: %w", entity, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("publish %s: commit: %w", entity, err)
	}
	return nil
}

func insertRejects(ctx context.Context, tx *sql.Tx, rejects []domain.QuarantineRecord) error {
	now := time.Now().UTC()
	values := make([][]any, len(rejects))
	for i := range rejects {
		rec := &rejects[i]
		if rec.ID == "" {
			rec.ID = domain.NewID()
		}
		if rec.CapturedAt.IsZero() {
			rec.CapturedAt = now
		}
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		values[i] = []any{rec.ID, rec.RunID, string(rec.Entity), rec.Field,
			rec.Reason, string(payload), rec.CapturedAt}
	}
	return insertRows(ctx, tx, "quarantine.records",
		"(id, run_id, entity, field, reason, payload, captured_at)", 7, values)
}

// insertChunk bounds the placeholder count of one INSERT statement.
const insertChunk = 200

func insertRows(ctx context.Context, tx *sql.Tx, table, columns string, width int, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	single := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"

	for start := 0; start < len(rows); start += insertChunk {
		end := start + insertChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*width)
		for i, row := range chunk {
			placeholders[i] = single
			args = append(args, row...)
		}

		stmt := "INSERT INTO " + table + " " + columns + " VALUES " + strings.Join(placeholders, ", ")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intArg(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func floatArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
