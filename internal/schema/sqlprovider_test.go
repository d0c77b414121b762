package schema

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestSQLProviderBuildsCatalog(t *testing.T) {
	db, mock := newSQLMock(t)
	provider := NewSQLProvider(db, "public", DefaultCatalog())

	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1 AND table_name <> 'storewise_schema_migrations'
ORDER BY table_name, ordinal_position`)).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("orders", "order_id", "integer").
			AddRow("orders", "status", "text").
			AddRow("products", "id", "integer"))

	catalog, err := provider.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if len(catalog.Tables) != 2 {
		t.Fatalf("len(Tables) = %d", len(catalog.Tables))
	}
	orders := catalog.Tables[0]
	if orders.Name != "orders" || len(orders.Columns) != 2 {
		t.Fatalf("orders table = %+v", orders)
	}
	if orders.Columns[0].Type != "INTEGER" {
		t.Fatalf("column type = %q", orders.Columns[0].Type)
	}
	if orders.Description == "" {
		t.Fatal("expected curated description to be merged")
	}
	if orders.Columns[0].Description == "" {
		t.Fatal("expected curated column description to be merged")
	}
	assertSQLMock(t, mock)
}

func TestSQLProviderErrorsOnEmptySchema(t *testing.T) {
	db, mock := newSQLMock(t)
	provider := NewSQLProvider(db, "analytics", Catalog{})

	mock.ExpectQuery("information_schema").
		WithArgs("analytics").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}))

	if _, err := provider.Schema(context.Background()); err == nil {
		t.Fatal("expected error for empty schema")
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
