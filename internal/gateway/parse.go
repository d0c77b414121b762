package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storewise/storewise/internal/viz"
)

// Verdict is the guardrail response shape: whether the question is about
// the dataset at all, and whether it is only a greeting.
type Verdict struct {
	Relevant bool `json:"relevant"`
	Greeting bool `json:"greeting"`
}

// VizChoice is the visualization decision response shape.
type VizChoice struct {
	Needed    bool      `json:"needed"`
	ChartType viz.Chart `json:"chart_type"`
}

// ExtractSQL strips markdown fencing from a generation response and
// returns the bare statement.
func ExtractSQL(content string) (string, error) {
	cleaned := stripCodeFence(content, "sql")
	if cleaned == "" {
		return "", fmt.Errorf("model returned empty SQL")
	}
	return cleaned, nil
}

// ParseVerdict decodes a guardrail response. Callers decide what a
// malformed verdict means; the workflow treats it as relevant so that an
// unparseable response never blocks a legitimate question.
func ParseVerdict(content string) (Verdict, error) {
	cleaned := stripCodeFence(content, "json")
	var verdict Verdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("decode guardrail verdict: %w", err)
	}
	return verdict, nil
}

// ParseVizChoice decodes a visualization decision. An unknown chart type
// on a needed choice is an error; the workflow falls back to no chart.
func ParseVizChoice(content string) (VizChoice, error) {
	cleaned := stripCodeFence(content, "json")
	var raw struct {
		Needed    bool   `json:"needed"`
		ChartType string `json:"chart_type"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return VizChoice{}, fmt.Errorf("decode viz choice: %w", err)
	}
	if !raw.Needed {
		return VizChoice{Needed: false, ChartType: viz.ChartNone}, nil
	}
	chart, ok := viz.ParseChart(raw.ChartType)
	if !ok || chart == viz.ChartNone {
		return VizChoice{}, fmt.Errorf("unknown chart type %q", raw.ChartType)
	}
	return VizChoice{Needed: true, ChartType: chart}, nil
}

func stripCodeFence(value, language string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```"+language)
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
