// Package sqlexec defines the execution surface for generated SQL: the
// result table, the classified error model that feeds the correction loop,
// and the read-only guard both warehouse backends enforce.
package sqlexec

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

type Table struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Category buckets an execution failure for the correction prompt and for
// metrics. Anything that is not clearly syntax, schema, or timeout related
// lands in runtime.
type Category string

const (
	CategorySyntax         Category = "syntax"
	CategorySchemaMismatch Category = "schema_mismatch"
	CategoryRuntime        Category = "runtime"
	CategoryTimeout        Category = "timeout"
)

// Error is an execution failure the workflow treats as data: the run stays
// alive and the error text is handed to the corrector. Infrastructure
// failures are returned as plain errors instead and fail the run.
type Error struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

type Executor interface {
	Execute(ctx context.Context, sqlText string) (Table, error)
}

func StripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

// Normalize produces the canonical form used to detect repeated queries:
// lowercased, whitespace collapsed, trailing semicolons removed. Formatting
// or casing changes alone do not make a query count as new.
func Normalize(sqlText string) string {
	stripped := StripTrailingSemicolons(sqlText)
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "drop": true,
	"alter": true, "create": true, "truncate": true, "attach": true,
	"detach": true, "copy": true, "pragma": true, "grant": true,
	"revoke": true, "merge": true, "call": true, "install": true,
	"load": true, "vacuum": true, "set": true,
}

// EnsureReadOnly rejects anything other than a single SELECT/WITH statement.
// Keywords inside quoted strings and identifiers are ignored. Violations are
// reported as classified errors so they enter the correction loop like any
// other bad query.
func EnsureReadOnly(sqlText string) error {
	stmt := StripTrailingSemicolons(sqlText)
	if stmt == "" {
		return &Error{Category: CategorySyntax, Message: "sql statement is empty"}
	}

	tokens, err := tokenize(stmt)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return &Error{Category: CategorySyntax, Message: "sql statement has no keywords"}
	}
	if tokens[0] != "select" && tokens[0] != "with" {
		return &Error{Category: CategorySyntax, Message: fmt.Sprintf("only SELECT/WITH statements are allowed, got %q", tokens[0])}
	}
	for _, token := range tokens {
		if writeKeywords[token] {
			return &Error{Category: CategorySyntax, Message: fmt.Sprintf("statement contains forbidden keyword %q", token)}
		}
	}
	return nil
}

// HasExplicitLimit reports whether the statement carries its own LIMIT
// clause outside of string literals and quoted identifiers.
func HasExplicitLimit(sqlText string) bool {
	tokens, err := tokenize(StripTrailingSemicolons(sqlText))
	if err != nil {
		return false
	}
	for _, token := range tokens {
		if token == "limit" {
			return true
		}
	}
	return false
}

// ApplyRowLimit wraps the statement with a row cap when it has no LIMIT of
// its own. The second return reports whether the cap was applied.
func ApplyRowLimit(sqlText string, limit int) (string, bool) {
	stmt := StripTrailingSemicolons(sqlText)
	if limit <= 0 || HasExplicitLimit(stmt) {
		return stmt, false
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", stmt, limit), true
}

func tokenize(stmt string) ([]string, error) {
	lowered := strings.ToLower(stmt)
	var (
		inSingle bool
		inDouble bool
		token    strings.Builder
		tokens   []string
	)
	flush := func() {
		if token.Len() > 0 {
			tokens = append(tokens, token.String())
			token.Reset()
		}
	}
	for _, r := range lowered {
		switch {
		case inSingle:
			if r == '\'' {
				inSingle = false
			}
		case inDouble:
			if r == '"' {
				inDouble = false
			}
		case r == '\'':
			flush()
			inSingle = true
		case r == '"':
			flush()
			inDouble = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			token.WriteRune(r)
		default:
			flush()
			if r == ';' {
				return nil, &Error{Category: CategorySyntax, Message: "multiple statements are not allowed"}
			}
		}
	}
	flush()
	return tokens, nil
}
