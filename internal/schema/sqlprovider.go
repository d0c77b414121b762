package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLProvider introspects live warehouse tables through information_schema.
// Curated descriptions from the static catalog are merged onto introspected
// columns so prompt quality survives the switch to a live warehouse.
type SQLProvider struct {
	db         *sql.DB
	schemaName string
	docs       Catalog
}

func NewSQLProvider(db *sql.DB, schemaName string, docs Catalog) *SQLProvider {
	if strings.TrimSpace(schemaName) == "" {
		schemaName = "public"
	}
	return &SQLProvider{db: db, schemaName: schemaName, docs: docs}
}

func (p *SQLProvider) Schema(ctx context.Context) (Catalog, error) {
	// Migration bookkeeping is not part of the queryable warehouse.
	query := `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1 AND table_name <> 'storewise_schema_migrations'
ORDER BY table_name, ordinal_position`

	rows, err := p.db.QueryContext(ctx, query, p.schemaName)
	if err != nil {
		return Catalog{}, fmt.Errorf("introspect schema %q: %w", p.schemaName, err)
	}
	defer func() { _ = rows.Close() }()

	var catalog Catalog
	var current *Table
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return Catalog{}, fmt.Errorf("scan column row: %w", err)
		}
		if current == nil || current.Name != tableName {
			catalog.Tables = append(catalog.Tables, Table{Name: tableName})
			current = &catalog.Tables[len(catalog.Tables)-1]
			if docTable, ok := p.docs.Table(tableName); ok {
				current.Description = docTable.Description
			}
		}
		column := Column{Name: columnName, Type: strings.ToUpper(dataType)}
		if docTable, ok := p.docs.Table(tableName); ok {
			for _, docColumn := range docTable.Columns {
				if strings.EqualFold(docColumn.Name, columnName) {
					column.Description = docColumn.Description
					break
				}
			}
		}
		current.Columns = append(current.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return Catalog{}, fmt.Errorf("iterate column rows: %w", err)
	}
	if len(catalog.Tables) == 0 {
		return Catalog{}, fmt.Errorf("schema %q has no tables", p.schemaName)
	}
	return catalog, nil
}
