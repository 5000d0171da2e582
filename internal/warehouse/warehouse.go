// Package warehouse owns the DuckDB file that holds the three storage areas
// of the quality engine: raw staging, the cleansed store, and the quarantine.
// Staging is untyped text written by loaders; the cleansed tables are typed
// and only ever replaced wholesale by the quality gate.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"refinery/internal/domain"
)

// Open opens the DuckDB warehouse at path. An empty path opens an in-memory
// database, which tests use.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return db, nil
}

// schemaDDL creates the three storage areas. Staging tables are all VARCHAR
// so loaders can never fail on bad source data; typing happens in the
// quality gate.
var schemaDDL = []string{
	`CREATE SCHEMA IF NOT EXISTS staging`,
	`CREATE SCHEMA IF NOT EXISTS cleansed`,
	`CREATE SCHEMA IF NOT EXISTS quarantine`,

	`CREATE TABLE IF NOT EXISTS staging.crm_customers (
		id VARCHAR, customer_number VARCHAR, first_name VARCHAR, last_name VARCHAR,
		marital_status VARCHAR, gender VARCHAR, created_date VARCHAR)`,
	`CREATE TABLE IF NOT EXISTS staging.crm_products (
		id VARCHAR, key VARCHAR, name VARCHAR, cost VARCHAR, line VARCHAR,
		start_date VARCHAR, end_date VARCHAR)`,
	`CREATE TABLE IF NOT EXISTS staging.crm_sales_lines (
		order_number VARCHAR, product_number VARCHAR, customer_id VARCHAR,
		order_date VARCHAR, ship_date VARCHAR, due_date VARCHAR,
		sales VARCHAR, quantity VARCHAR, price VARCHAR)`,
	`CREATE TABLE IF NOT EXISTS staging.erp_customer_demo (
		id VARCHAR, birth_date VARCHAR, gender VARCHAR)`,
	`CREATE TABLE IF NOT EXISTS staging.erp_locations (
		id VARCHAR, country VARCHAR)`,
	`CREATE TABLE IF NOT EXISTS staging.erp_categories (
		id VARCHAR, category VARCHAR, subcategory VARCHAR, maintenance VARCHAR)`,

	`CREATE TABLE IF NOT EXISTS cleansed.customers (
		id BIGINT, customer_number VARCHAR, first_name VARCHAR, last_name VARCHAR,
		marital_status VARCHAR, gender VARCHAR, created_date DATE, loaded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cleansed.products (
		id BIGINT, product_number VARCHAR, category_id VARCHAR, name VARCHAR,
		cost DOUBLE, line VARCHAR, start_date DATE, end_date DATE, loaded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cleansed.sales_lines (
		order_number VARCHAR, product_number VARCHAR, customer_id BIGINT,
		order_date DATE, ship_date DATE, due_date DATE,
		sales DOUBLE, quantity BIGINT, price DOUBLE, loaded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cleansed.customer_demo (
		customer_number VARCHAR, birth_date DATE, gender VARCHAR, loaded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cleansed.locations (
		customer_number VARCHAR, country VARCHAR, loaded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cleansed.categories (
		id VARCHAR, category VARCHAR, subcategory VARCHAR, maintenance VARCHAR, loaded_at TIMESTAMP)`,

	`CREATE TABLE IF NOT EXISTS quarantine.records (
		id VARCHAR, run_id VARCHAR, entity VARCHAR, field VARCHAR, reason VARCHAR,
		payload VARCHAR, captured_at TIMESTAMP)`,
}

// EnsureSchema creates the schemas and tables if they do not exist yet.
// Always safe to call at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("warehouse ddl: %w", err)
		}
	}
	return nil
}

// stagingTable names the staging table and column set for one entity. The
// column names double as the raw record field names the rules read.
type stagingTable struct {
	name    string
	columns []string
}

var stagingTables = map[domain.Entity]stagingTable{
	domain.EntityCustomer: {
		name: "staging.crm_customers",
		columns: []string{
			"id", "customer_number", "first_name", "last_name",
			"marital_status", "gender", "created_date",
		},
	},
	domain.EntityProduct: {
		name: "staging.crm_products",
		columns: []string{
			"id", "key", "name", "cost", "line", "start_date", "end_date",
		},
	},
	domain.EntitySalesLine: {
		name: "staging.crm_sales_lines",
		columns: []string{
			"order_number", "product_number", "customer_id",
			"order_date", "ship_date", "due_date", "sales", "quantity", "price",
		},
	},
	domain.EntityCustomerDemo: {
		name:    "staging.erp_customer_demo",
		columns: []string{"id", "birth_date", "gender"},
	},
	domain.EntityLocation: {
		name:    "staging.erp_locations",
		columns: []string{"id", "country"},
	},
	domain.EntityCategory: {
		name:    "staging.erp_categories",
		columns: []string{"id", "category", "subcategory", "maintenance"},
	},
}
