// Package viz turns a query result into a declarative chart specification.
// It never calls the language model: the chart kind is decided upstream and
// the encodings here are a pure function of the column types.
package viz

import "strings"

type Chart string

const (
	ChartBar     Chart = "bar"
	ChartLine    Chart = "line"
	ChartPie     Chart = "pie"
	ChartScatter Chart = "scatter"
	ChartNone    Chart = "none"
)

// ParseChart maps free-form model output onto a known chart kind.
func ParseChart(value string) (Chart, bool) {
	switch Chart(strings.ToLower(strings.TrimSpace(value))) {
	case ChartBar:
		return ChartBar, true
	case ChartLine:
		return ChartLine, true
	case ChartPie:
		return ChartPie, true
	case ChartScatter:
		return ChartScatter, true
	case ChartNone:
		return ChartNone, true
	default:
		return ChartNone, false
	}
}

// Spec is the renderer-agnostic chart description returned to clients.
// Bar and pie charts use Label/Y, line charts use a formatted time label,
// and scatter plots carry numeric X values as well.
type Spec struct {
	Kind      Chart   `json:"kind"`
	Title     string  `json:"title"`
	XLabel    string  `json:"x_label"`
	YLabel    string  `json:"y_label"`
	Points    []Point `json:"points"`
	Truncated bool    `json:"truncated,omitempty"`
}

type Point struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
}
