package quality

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinery/internal/domain"
	"refinery/internal/warehouse"
)

func setupGate(t *testing.T, strict bool) (*Service, *warehouse.Store, *sql.DB) {
	t.Helper()
	db, err := warehouse.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, warehouse.EnsureSchema(ctx, db))
	require.NoError(t, warehouse.Seed(ctx, db))

	store := warehouse.NewStore(db)
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(warehouse.NewStaging(db), store, logger, strict)
	return svc, store, db
}

func TestProcessEntity_Customers(t *testing.T) {
	svc, _, db := setupGate(t, false)
	ctx := context.Background()

	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntityCustomer)
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.SourceRows)
	assert.Equal(t, int64(4), result.AcceptedRows)
	assert.Equal(t, int64(3), result.RejectedRows)
	assert.True(t, result.Conserved())
	assert.Equal(t, map[string]int64{
		domain.ReasonDuplicate:  1,
		domain.ReasonMissingKey: 1,
		domain.ReasonUnparsable: 1,
	}, result.RejectReasons)

	// The later version of customer 11000 won the dedup.
	var created sql.NullTime
	err = db.QueryRowContext(ctx,
		"SELECT created_date FROM cleansed.customers WHERE id = 11000").Scan(&created)
	require.NoError(t, err)
	require.True(t, created.Valid)
	assert.Equal(t, "2022-06-15", created.Time.Format("2006-01-02"))

	// The loser carries the duplicate reason with its original payload.
	recs, err := warehouse.NewQuarantine(db).List(ctx, domain.QuarantineFilter{
		Entity: domain.EntityCustomer, Reason: domain.ReasonDuplicate,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2021-01-01", recs[0].Payload["created_date"])
}

func TestProcessEntity_Products(t *testing.T) {
	svc, _, db := setupGate(t, false)
	ctx := context.Background()

	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntityProduct)
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.SourceRows)
	assert.Equal(t, int64(6), result.AcceptedRows)
	assert.Equal(t, int64(4), result.RejectedRows)
	assert.Equal(t, map[string]int64{
		domain.ReasonMissingKey:  1,
		domain.ReasonUnparsable:  1,
		domain.ReasonDuplicateID: 2,
	}, result.RejectReasons)

	// The stale source end date was recomputed from the next version.
	var end sql.NullTime
	err = db.QueryRowContext(ctx,
		"SELECT end_date FROM cleansed.products WHERE id = 680").Scan(&end)
	require.NoError(t, err)
	require.True(t, end.Valid)
	assert.Equal(t, "2012-06-30", end.Time.Format("2006-01-02"))

	// The latest version stays open.
	err = db.QueryRowContext(ctx,
		"SELECT end_date FROM cleansed.products WHERE id = 706").Scan(&end)
	require.NoError(t, err)
	assert.False(t, end.Valid)

	// Negative cost clamped to zero; category key uses underscores.
	var (
		cost     float64
		category string
	)
	err = db.QueryRowContext(ctx,
		"SELECT cost, category_id FROM cleansed.products WHERE id = 708").Scan(&cost, &category)
	require.NoError(t, err)
	assert.Zero(t, cost)
	assert.Equal(t, "MO_21", category)
}

func TestProcessEntity_SalesLines(t *testing.T) {
	svc, _, db := setupGate(t, false)
	ctx := context.Background()

	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntitySalesLine)
	require.NoError(t, err)

	assert.Equal(t, int64(12), result.SourceRows)
	assert.Equal(t, int64(7), result.AcceptedRows)
	assert.Equal(t, int64(5), result.RejectedRows)
	assert.Equal(t, map[string]int64{
		domain.ReasonDateSequence: 2,
		domain.ReasonUnparsable:   3,
	}, result.RejectReasons)

	tests := []struct {
		order     string
		wantSales float64
		wantPrice float64
	}{
		{order: "SO43698", wantSales: 43.96, wantPrice: 21.98}, // sales rederived
		{order: "SO43699", wantSales: 20, wantPrice: 10},       // price rederived
		{order: "SO43700", wantSales: 100, wantPrice: 20},      // zero price rederived
		{order: "SO43701", wantSales: 95.16, wantPrice: 31.72}, // inconsistent sales recomputed
	}
	for _, tt := range tests {
		var (
			sales float64
			price sql.NullFloat64
		)
		err := db.QueryRowContext(ctx,
			"SELECT sales, price FROM cleansed.sales_lines WHERE order_number = ?", tt.order).
			Scan(&sales, &price)
		require.NoError(t, err, tt.order)
		assert.InDelta(t, tt.wantSales, sales, 0.005, tt.order)
		require.True(t, price.Valid, tt.order)
		assert.InDelta(t, tt.wantPrice, price.Float64, 0.005, tt.order)
	}

	// A null-shaped source date stays NULL instead of being rejected.
	var orderDate sql.NullTime
	err = db.QueryRowContext(ctx,
		"SELECT order_date FROM cleansed.sales_lines WHERE order_number = 'SO43702'").Scan(&orderDate)
	require.NoError(t, err)
	assert.False(t, orderDate.Valid)
}

func TestProcessEntity_CustomerDemo(t *testing.T) {
	svc, _, db := setupGate(t, false)
	ctx := context.Background()

	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntityCustomerDemo)
	require.NoError(t, err)

	assert.Equal(t, int64(11), result.SourceRows)
	assert.Equal(t, int64(6), result.AcceptedRows)
	assert.Equal(t, int64(5), result.RejectedRows)
	assert.Equal(t, map[string]int64{
		domain.ReasonMissingKey:  2,
		domain.ReasonUnparsable:  1,
		domain.ReasonDuplicateID: 2,
	}, result.RejectReasons)

	// Legacy prefix and hyphens are gone.
	var n int
	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM cleansed.customer_demo WHERE customer_number = 'AW00011000'").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Implausible birth dates were nulled, not rejected.
	var birth sql.NullTime
	err = db.QueryRowContext(ctx,
		"SELECT birth_date FROM cleansed.customer_demo WHERE customer_number = 'AW00011003'").Scan(&birth)
	require.NoError(t, err)
	assert.False(t, birth.Valid)
}

func TestProcessEntity_Locations(t *testing.T) {
	svc, _, db := setupGate(t, false)
	ctx := context.Background()

	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntityLocation)
	require.NoError(t, err)

	assert.Equal(t, int64(8), result.SourceRows)
	assert.Equal(t, int64(5), result.AcceptedRows)
	assert.Equal(t, int64(3), result.RejectedRows)

	var country string
	err = db.QueryRowContext(ctx,
		"SELECT country FROM cleansed.locations WHERE customer_number = 'AW00011000'").Scan(&country)
	require.NoError(t, err)
	assert.Equal(t, "United States", country)

	// Both AW00011 claimants were rejected wholesale.
	var n int
	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM cleansed.locations WHERE customer_number = 'AW00011'").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProcessEntity_Categories(t *testing.T) {
	svc, _, _ := setupGate(t, false)

	result, err := svc.ProcessEntity(context.Background(), "run-1", domain.EntityCategory)
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.SourceRows)
	assert.Equal(t, int64(4), result.AcceptedRows)
	assert.Equal(t, int64(3), result.RejectedRows)
}

func TestProcessEntity_MassConservation(t *testing.T) {
	svc, _, _ := setupGate(t, false)
	ctx := context.Background()

	for _, entity := range domain.EntityOrder {
		result, err := svc.ProcessEntity(ctx, "run-1", entity)
		require.NoError(t, err, entity)
		assert.True(t, result.Conserved(), "conservation for %s", entity)
		assert.Positive(t, result.SourceRows, "fixture coverage for %s", entity)
	}
}

// dumpTable renders a deterministic projection of a cleansed table so runs
// can be compared excluding write-time metadata.
func dumpTable(t *testing.T, db *sql.DB, query string) []string {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out []string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		require.NoError(t, rows.Scan(dest...))
		line := ""
		for _, c := range cells {
			line += fmt.Sprintf("%q|", c.String)
		}
		out = append(out, line)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestProcessEntity_Idempotent(t *testing.T) {
	svc, store, db := setupGate(t, false)
	ctx := context.Background()

	dumps := func() map[string][]string {
		return map[string][]string{
			"customers": dumpTable(t, db, `
				SELECT id, customer_number, first_name, last_name, marital_status, gender, created_date
				FROM cleansed.customers ORDER BY id`),
			"products": dumpTable(t, db, `
				SELECT id, product_number, category_id, name, cost, line, start_date, end_date
				FROM cleansed.products ORDER BY id`),
			"sales": dumpTable(t, db, `
				SELECT order_number, product_number, customer_id, order_date, ship_date, due_date, sales, quantity, price
				FROM cleansed.sales_lines ORDER BY order_number`),
			"quarantine": dumpTable(t, db, `
				SELECT entity, field, reason, payload FROM quarantine.records
				ORDER BY entity, reason, field, payload`),
		}
	}

	runAll := func(runID string) {
		require.NoError(t, store.ClearQuarantine(ctx))
		for _, entity := range domain.EntityOrder {
			_, err := svc.ProcessEntity(ctx, runID, entity)
			require.NoError(t, err)
		}
	}

	runAll("run-1")
	first := dumps()
	runAll("run-2")
	second := dumps()

	for name := range first {
		assert.Equal(t, first[name], second[name], "table %s drifted between runs", name)
	}
}

func TestProcessEntity_StrictMode(t *testing.T) {
	svc, _, _ := setupGate(t, true)
	ctx := context.Background()

	// The customer fixture carries an unparsable id, which strict mode
	// treats as fatal for the entity.
	_, err := svc.ProcessEntity(ctx, "run-1", domain.EntityCustomer)
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	// Entities without unparsable values run normally.
	result, err := svc.ProcessEntity(ctx, "run-1", domain.EntityLocation)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.AcceptedRows)
}

func TestProcessEntity_UnknownEntity(t *testing.T) {
	svc, _, _ := setupGate(t, false)

	_, err := svc.ProcessEntity(context.Background(), "run-1", domain.Entity("orders"))
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}
