// Package duckdb executes queries against the locally synced parquet
// dataset. Every call opens a fresh in-memory database and exposes each
// <table>.parquet file under the dataset directory as a view, so a sync
// landing between two queries is picked up without any shared state.
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/storewise/storewise/internal/sqlexec"
)

type Executor struct {
	Dir      string
	RowLimit int
	Timeout  time.Duration
}

func NewExecutor(dir string, rowLimit int, timeout time.Duration) *Executor {
	return &Executor{Dir: dir, RowLimit: rowLimit, Timeout: timeout}
}

func (e *Executor) Execute(ctx context.Context, sqlText string) (sqlexec.Table, error) {
	if err := sqlexec.EnsureReadOnly(sqlText); err != nil {
		return sqlexec.Table{}, err
	}
	if e.Dir == "" {
		return sqlexec.Table{}, fmt.Errorf("dataset directory is required")
	}

	files, err := filepath.Glob(filepath.Join(e.Dir, "*.parquet"))
	if err != nil {
		return sqlexec.Table{}, fmt.Errorf("list dataset files: %w", err)
	}
	if len(files) == 0 {
		return sqlexec.Table{}, fmt.Errorf("no parquet files under %q, dataset not synced", e.Dir)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return sqlexec.Table{}, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, file := range files {
		tableName := strings.TrimSuffix(filepath.Base(file), ".parquet")
		viewSQL := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS SELECT * FROM read_parquet(%s)`, quoteIdent(tableName), quoteString(file))
		if _, err := db.ExecContext(ctx, viewSQL); err != nil {
			return sqlexec.Table{}, fmt.Errorf("create view for table %q: %w", tableName, err)
		}
	}

	stmt := sqlexec.StripTrailingSemicolons(sqlText)
	var capped bool
	if e.RowLimit > 0 {
		stmt, capped = sqlexec.ApplyRowLimit(stmt, e.RowLimit+1)
	}

	rows, err := db.QueryContext(ctx, stmt)
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

// classify maps a DuckDB failure onto the categories the correction loop
// understands. Context cancellation is not the query's fault and passes
// through unclassified.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &sqlexec.Error{Category: sqlexec.CategoryTimeout, Message: "query exceeded the execution deadline"}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "parser error"), strings.Contains(message, "syntax error"):
		return &sqlexec.Error{Category: sqlexec.CategorySyntax, Message: err.Error()}
	case strings.Contains(message, "catalog error"),
		strings.Contains(message, "binder error"),
		strings.Contains(message, "does not exist"),
		strings.Contains(message, "not found in from clause"):
		return &sqlexec.Error{Category: sqlexec.CategorySchemaMismatch, Message: err.Error()}
	default:
		return &sqlexec.Error{Category: sqlexec.CategoryRuntime, Message: err.Error()}
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

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
