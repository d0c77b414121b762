// Package export turns a completed run's result table into a parquet
// artifact in object storage.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/storewise/storewise/internal/observability"
	"github.com/storewise/storewise/internal/sqlexec"
	"github.com/storewise/storewise/internal/storage"
)

type ParquetExporter struct {
	Store  storage.ObjectStore
	Logger *slog.Logger
}

// Export writes the table to exports/<runID>.parquet and returns the stored
// object's info.
func (e *ParquetExporter) Export(ctx context.Context, runID string, table sqlexec.Table) (storage.ObjectInfo, error) {
	if e.Store == nil {
		return storage.ObjectInfo{}, fmt.Errorf("object store is required")
	}

	data, err := Encode(table)
	if err != nil {
		observability.IncrementExport("failure")
		return storage.ObjectInfo{}, err
	}

	key, err := storage.BuildExportFilePath(runID)
	if err != nil {
		observability.IncrementExport("failure")
		return storage.ObjectInfo{}, err
	}

	info, err := e.Store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: "application/octet-stream"})
	if err != nil {
		observability.IncrementExport("failure")
		return storage.ObjectInfo{}, fmt.Errorf("put export object %s: %w", key, err)
	}

	observability.IncrementExport("success")
	if e.Logger != nil {
		e.Logger.InfoContext(ctx, "result exported",
			slog.String("run_id", runID),
			slog.String("key", info.Key),
			slog.Int64("bytes", info.Size),
			slog.Int("rows", len(table.Rows)))
	}
	return info, nil
}

// Encode renders the table as parquet. The schema is built from the result
// columns at runtime: every field is optional, typed from the first non-nil
// cell in its column.
func Encode(table sqlexec.Table) ([]byte, error) {
	if len(table.Columns) == 0 || len(table.Rows) == 0 {
		return nil, fmt.Errorf("result table is empty")
	}

	columns := dedupeColumns(table.Columns)
	group := parquet.Group{}
	for i, column := range columns {
		group[column] = parquet.Optional(columnNode(table.Rows, i))
	}
	schema := parquet.NewSchema("result", group)

	rows := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			if i >= len(row) {
				continue
			}
			value := normalizeCell(row[i])
			if value == nil {
				continue
			}
			record[column] = value
		}
		rows = append(rows, record)
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[map[string]any](buf, schema)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// columnNode picks the parquet type from the first non-nil cell. An all-NULL
// column falls back to string.
func columnNode(rows [][]any, col int) parquet.Node {
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch normalizeCell(row[col]).(type) {
		case int64:
			return parquet.Int(64)
		case float64:
			return parquet.Leaf(parquet.DoubleType)
		case bool:
			return parquet.Leaf(parquet.BooleanType)
		default:
			return parquet.String()
		}
	}
	return parquet.String()
}

// normalizeCell widens executor cell values to the four types the schema
// builder understands. Timestamps export as RFC3339 strings.
func normalizeCell(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case int:
		return int64(typed)
	case int8:
		return int64(typed)
	case int16:
		return int64(typed)
	case int32:
		return int64(typed)
	case int64:
		return typed
	case uint:
		return int64(typed)
	case uint8:
		return int64(typed)
	case uint16:
		return int64(typed)
	case uint32:
		return int64(typed)
	case uint64:
		return int64(typed)
	case float32:
		return float64(typed)
	case float64:
		return typed
	case bool:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	case []byte:
		return string(typed)
	case string:
		return typed
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func dedupeColumns(columns []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == "" {
			column = "column"
		}
		name := column
		for i := 2; seen[name]; i++ {
			name = fmt.Sprintf("%s_%d", column, i)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
