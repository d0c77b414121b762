package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storewise/storewise/internal/sqlexec"
)

func TestExecuteWrapsRowLimitAndScansRows(t *testing.T) {
	db, mock := newSQLMock(t)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT status FROM orders) AS q LIMIT 11")).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).
			AddRow([]byte("shipped")).
			AddRow([]byte("returned")))

	executor := NewExecutor(db, 10, 0)
	table, err := executor.Execute(context.Background(), "SELECT status FROM orders;")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(table.Columns) != 1 || table.Columns[0] != "status" {
		t.Fatalf("columns = %#v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if table.Rows[0][0] != "shipped" {
		t.Fatalf("first value = %#v, want normalized string", table.Rows[0][0])
	}
	if table.Truncated {
		t.Fatal("result below the cap should not be truncated")
	}
	assertSQLMock(t, mock)
}

func TestExecuteMarksTruncationAtCap(t *testing.T) {
	db, mock := newSQLMock(t)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT order_id FROM orders) AS q LIMIT 3")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).
			AddRow(int64(1)).
			AddRow(int64(2)).
			AddRow(int64(3)))

	executor := NewExecutor(db, 2, 0)
	table, err := executor.Execute(context.Background(), "SELECT order_id FROM orders")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if !table.Truncated {
		t.Fatal("expected truncation flag at the row cap")
	}
	assertSQLMock(t, mock)
}

func TestExecuteClassifiesSQLState(t *testing.T) {
	cases := []struct {
		code string
		want sqlexec.Category
	}{
		{"42601", sqlexec.CategorySyntax},
		{"42P01", sqlexec.CategorySchemaMismatch},
		{"42703", sqlexec.CategorySchemaMismatch},
		{"57014", sqlexec.CategoryTimeout},
		{"22012", sqlexec.CategoryRuntime},
	}
	for _, tc := range cases {
		db, mock := newSQLMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT 1) AS q LIMIT 11")).
			WillReturnError(&pgconn.PgError{Code: tc.code, Message: "boom"})

		executor := NewExecutor(db, 10, 0)
		_, err := executor.Execute(context.Background(), "SELECT 1")
		var execErr *sqlexec.Error
		if !errors.As(err, &execErr) {
			t.Fatalf("code %s: error type = %T, want *sqlexec.Error", tc.code, err)
		}
		if execErr.Category != tc.want {
			t.Fatalf("code %s: category = %q, want %q", tc.code, execErr.Category, tc.want)
		}
		assertSQLMock(t, mock)
		_ = db.Close()
	}
}

func TestExecuteIncludesHintInClassifiedMessage(t *testing.T) {
	db, mock := newSQLMock(t)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT nmae FROM users) AS q LIMIT 11")).
		WillReturnError(&pgconn.PgError{
			Code:    "42703",
			Message: `column "nmae" does not exist`,
			Hint:    `Perhaps you meant to reference the column "users.name".`,
		})

	executor := NewExecutor(db, 10, 0)
	_, err := executor.Execute(context.Background(), "SELECT nmae FROM users")
	var execErr *sqlexec.Error
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *sqlexec.Error", err)
	}
	if !strings.Contains(execErr.Message, "hint:") {
		t.Fatalf("message %q should carry the server hint", execErr.Message)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRejectsWritesWithoutQuerying(t *testing.T) {
	db, mock := newSQLMock(t)
	defer func() { _ = db.Close() }()

	executor := NewExecutor(db, 10, 0)
	_, err := executor.Execute(context.Background(), "DROP TABLE orders")
	var execErr *sqlexec.Error
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *sqlexec.Error", err)
	}
	if execErr.Category != sqlexec.CategorySyntax {
		t.Fatalf("category = %q, want %q", execErr.Category, sqlexec.CategorySyntax)
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
