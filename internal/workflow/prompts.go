package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/storewise/storewise/internal/gateway"
	"github.com/storewise/storewise/internal/sqlexec"
	"github.com/storewise/storewise/internal/viz"
)

func guardrailPrompt(schemaContext, question string) gateway.Prompt {
	system := "You are the guardrail for an e-commerce SQL analytics system. " +
		"Classify whether the user's question can be answered from the database below. " +
		"Greetings like \"hi\" or \"good morning\" are greeting=true. " +
		"Questions about products, users, orders, order items, inventory, distribution centers, " +
		"or user events are relevant. Personal account data, future predictions, external " +
		"comparisons, and unrelated topics are not. Be permissive: when uncertain, mark the " +
		"question relevant. " +
		"Respond with only JSON: {\"relevant\": bool, \"greeting\": bool}."
	user := fmt.Sprintf("DATABASE SCHEMA:\n%s\n\nUser Question: %q", schemaContext, question)
	return gateway.Prompt{System: system, User: user}
}

func generatePrompt(schemaContext, question string) gateway.Prompt {
	system := "You are an expert SQL developer. Convert the user's question into one valid, " +
		"read-only SQL query using PostgreSQL-compatible syntax. " +
		"Use only tables and columns from the schema. Use explicit JOIN syntax with ON clauses, " +
		"meaningful aliases, and ORDER BY for ranked results. " +
		"Calculate revenue from order_items.sale_price, excluding cancelled and returned orders. " +
		"For trends, group by date_trunc on the timestamp column. " +
		"Return ONLY a single SELECT statement. No markdown, no explanation, no data modification."
	user := fmt.Sprintf("%s\n\nUser Question: %q\n\nSQL Query:", schemaContext, question)
	return gateway.Prompt{System: system, User: user}
}

// regeneratePrompt retries generation with the rejection attached. The
// generator gets exactly one retry before the run fails.
func regeneratePrompt(schemaContext, question, rejected, problem string) gateway.Prompt {
	prompt := generatePrompt(schemaContext, question)
	prompt.User = fmt.Sprintf(
		"%s\n\nYour previous response was rejected: %s\nPrevious response:\n%s\n\nReturn one read-only SELECT statement only.\n\nSQL Query:",
		prompt.User, problem, rejected,
	)
	return prompt
}

func correctPrompt(schemaContext, question, failedSQL, errMessage string) gateway.Prompt {
	system := "You are an expert SQL debugger. A query against the schema below failed. " +
		"Fix it while preserving the original intent. " +
		"Common fixes: misspelled column or table names (check the schema exactly), " +
		"missing commas or unmatched parentheses, JOINs without ON clauses, and " +
		"non-aggregated columns missing from GROUP BY. " +
		"Return ONLY the corrected single SELECT statement. No markdown, no explanation."
	user := fmt.Sprintf(
		"%s\n\nORIGINAL USER QUESTION: %q\n\nFAILED SQL QUERY:\n%s\n\nERROR MESSAGE:\n%s\n\nCorrected SQL Query:",
		schemaContext, question, failedSQL, errMessage,
	)
	return gateway.Prompt{System: system, User: user}
}

func analyzePrompt(question, sqlText, resultText string) gateway.Prompt {
	system := "You are a data analyst who explains query results in clear, conversational " +
		"language. Start with a direct answer to the question, format numbers readably, " +
		"use short lists for rankings, and mention notable patterns. Plain text only."
	user := fmt.Sprintf(
		"ORIGINAL USER QUESTION: %q\n\nSQL QUERY EXECUTED:\n%s\n\nQUERY RESULTS:\n%s\n\nAnswer:",
		question, sqlText, resultText,
	)
	return gateway.Prompt{System: system, User: user}
}

func vizDecidePrompt(question string, table *sqlexec.Table) gateway.Prompt {
	system := "You decide whether a chart would help present a query result. " +
		"bar compares categories, line shows trends over time, pie shows proportions of a " +
		"whole, scatter shows the relationship between two numeric columns. " +
		"Single values, yes/no answers, and text-heavy results need no chart. " +
		"Respond with only JSON: {\"needed\": bool, \"chart_type\": \"bar\"|\"line\"|\"pie\"|\"scatter\"|\"none\"}."
	user := fmt.Sprintf(
		"USER QUESTION: %q\n\nRESULT SHAPE: %d rows\nCOLUMNS: %s",
		question, len(table.Rows), columnShapes(table),
	)
	return gateway.Prompt{System: system, User: user}
}

func columnShapes(table *sqlexec.Table) string {
	kinds := viz.ClassifyColumns(*table)
	parts := make([]string, 0, len(table.Columns))
	for i, column := range table.Columns {
		parts = append(parts, fmt.Sprintf("%s (%s)", column, kinds[i]))
	}
	return strings.Join(parts, ", ")
}

// renderResult turns a table into the bounded plain-text block embedded in
// the analysis prompt. Rows past the cap are summarized, not included.
func renderResult(table *sqlexec.Table, sampleCap int) string {
	if table == nil || len(table.Rows) == 0 {
		return "No results found."
	}

	var b strings.Builder
	b.WriteString(strings.Join(table.Columns, " | "))
	b.WriteString("\n")

	rows := table.Rows
	sampled := false
	if sampleCap > 0 && len(rows) > sampleCap {
		rows = rows[:sampleCap]
		sampled = true
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = formatCell(cell)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if sampled {
		fmt.Fprintf(&b, "(showing first %d of %d rows)\n", sampleCap, len(table.Rows))
	}
	if table.Truncated {
		b.WriteString("(the result was cut off at the executor row limit)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return typed.Format(time.RFC3339)
	case string:
		return typed
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", typed), "0"), ".")
	default:
		return fmt.Sprintf("%v", typed)
	}
}
