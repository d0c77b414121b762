// Package postgres executes queries against a live Postgres warehouse.
// Failures carry SQLSTATE codes, which map directly onto the categories
// the correction loop understands.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storewise/storewise/internal/sqlexec"
)

type Executor struct {
	DB       *sql.DB
	RowLimit int
	Timeout  time.Duration
}

func NewExecutor(db *sql.DB, rowLimit int, timeout time.Duration) *Executor {
	return &Executor{DB: db, RowLimit: rowLimit, Timeout: timeout}
}

func (e *Executor) Execute(ctx context.Context, sqlText string) (sqlexec.Table, error) {
	if err := sqlexec.EnsureReadOnly(sqlText); err != nil {
		return sqlexec.Table{}, err
	}
	if e.DB == nil {
		return sqlexec.Table{}, fmt.Errorf("warehouse db is required")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	stmt := sqlexec.StripTrailingSemicolons(sqlText)
	var capped bool
	if e.RowLimit > 0 {
		stmt, capped = sqlexec.ApplyRowLimit(stmt, e.RowLimit+1)
	}

	rows, err := e.DB.QueryContext(ctx, stmt)
	if err != nil {
		return sqlexec.Table{}, classify(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return sqlexec.Table{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return sqlexec.Table{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return sqlexec.Table{}, classify(err)
	}

	table := sqlexec.Table{Columns: columns, Rows: resultRows}
	if capped && len(table.Rows) > e.RowLimit {
		table.Rows = table.Rows[:e.RowLimit]
		table.Truncated = true
	}
	return table, nil
}

// classify maps SQLSTATE codes onto error categories. 42601 is a grammar
// error, the rest of class 42 covers missing or mistyped schema objects,
// and 57014 is what statement_timeout raises.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &sqlexec.Error{Category: sqlexec.CategoryTimeout, Message: "query exceeded the execution deadline"}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &sqlexec.Error{Category: sqlexec.CategoryRuntime, Message: err.Error()}
	}

	message := pgErr.Message
	if pgErr.Hint != "" {
		message = fmt.Sprintf("%s (hint: %s)", pgErr.Message, pgErr.Hint)
	}

	switch {
	case pgErr.Code == "42601":
		return &sqlexec.Error{Category: sqlexec.CategorySyntax, Message: message}
	case pgErr.Code == "57014":
		return &sqlexec.Error{Category: sqlexec.CategoryTimeout, Message: message}
	case strings.HasPrefix(pgErr.Code, "42"):
		return &sqlexec.Error{Category: sqlexec.CategorySchemaMismatch, Message: message}
	default:
		return &sqlexec.Error{Category: sqlexec.CategoryRuntime, Message: message}
	}
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
