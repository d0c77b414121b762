// Package schema describes the warehouse tables the ask workflow can query.
// The catalog is plain data: prompt rendering, fingerprinting, and the HTTP
// schema endpoint all derive from the same structures.
package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
}

type Catalog struct {
	Tables []Table `json:"tables"`
}

// Provider supplies the catalog a run prompts against. Implementations must
// return a catalog that is safe to share between concurrent runs.
type Provider interface {
	Schema(ctx context.Context) (Catalog, error)
}

func (c Catalog) Table(name string) (Table, bool) {
	for _, table := range c.Tables {
		if strings.EqualFold(table.Name, name) {
			return table, true
		}
	}
	return Table{}, false
}

func (c Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for _, table := range c.Tables {
		names = append(names, table.Name)
	}
	return names
}

func (c Catalog) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("catalog has no tables")
	}
	seenTables := map[string]bool{}
	for _, table := range c.Tables {
		name := strings.ToLower(strings.TrimSpace(table.Name))
		if name == "" {
			return fmt.Errorf("table name is required")
		}
		if seenTables[name] {
			return fmt.Errorf("duplicate table %q", table.Name)
		}
		seenTables[name] = true
		if len(table.Columns) == 0 {
			return fmt.Errorf("table %q has no columns", table.Name)
		}
		seenColumns := map[string]bool{}
		for _, column := range table.Columns {
			columnName := strings.ToLower(strings.TrimSpace(column.Name))
			if columnName == "" {
				return fmt.Errorf("table %q has a column without a name", table.Name)
			}
			if seenColumns[columnName] {
				return fmt.Errorf("table %q has duplicate column %q", table.Name, column.Name)
			}
			seenColumns[columnName] = true
		}
	}
	return nil
}

// Fingerprint hashes table and column structure. Descriptions are excluded so
// documentation edits do not invalidate cached gateway responses.
func (c Catalog) Fingerprint() string {
	lines := make([]string, 0, len(c.Tables))
	for _, table := range c.Tables {
		for _, column := range table.Columns {
			lines = append(lines, strings.ToLower(fmt.Sprintf("%s.%s:%s", table.Name, column.Name, column.Type)))
		}
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// PromptContext renders the catalog in the textual form the model prompts
// consume.
func (c Catalog) PromptContext() string {
	var b strings.Builder
	for i, table := range c.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "TABLE: %s\n", strings.ToUpper(table.Name))
		if table.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", table.Description)
		}
		b.WriteString("COLUMNS:\n")
		for _, column := range table.Columns {
			if column.Description != "" {
				fmt.Fprintf(&b, "- %s (%s): %s\n", column.Name, column.Type, column.Description)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", column.Name, column.Type)
			}
		}
	}
	return b.String()
}
