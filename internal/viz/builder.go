package viz

import (
	"fmt"
	"strconv"
	"time"

	"github.com/storewise/storewise/internal/sqlexec"
)

// MaxPoints caps how many data points a chart carries. Results past the cap
// keep their first points and set Truncated.
const MaxPoints = 20

type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindTemporal    ColumnKind = "temporal"
	KindCategorical ColumnKind = "categorical"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ClassifyColumns inspects every non-nil cell of each column. A column
// counts as numeric or temporal only when all of its values agree;
// anything mixed or empty is categorical.
func ClassifyColumns(table sqlexec.Table) []ColumnKind {
	kinds := make([]ColumnKind, len(table.Columns))
	for col := range table.Columns {
		kinds[col] = classifyColumn(table, col)
	}
	return kinds
}

func classifyColumn(table sqlexec.Table, col int) ColumnKind {
	seen := false
	kind := KindCategorical
	for _, row := range table.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		cellKind := classifyValue(row[col])
		if !seen {
			kind = cellKind
			seen = true
			continue
		}
		if cellKind != kind {
			return KindCategorical
		}
	}
	if !seen {
		return KindCategorical
	}
	return kind
}

func classifyValue(value any) ColumnKind {
	switch typed := value.(type) {
	case time.Time:
		return KindTemporal
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumeric
	case string:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, typed); err == nil {
				return KindTemporal
			}
		}
		if _, err := strconv.ParseFloat(typed, 64); err == nil {
			return KindNumeric
		}
		return KindCategorical
	default:
		return KindCategorical
	}
}

// Build maps the result table onto the requested chart kind. Line charts
// want a temporal x-axis, bar and pie charts a categorical one, scatter
// plots two numeric columns. A table that cannot satisfy the encoding
// yields an error; callers skip the chart and keep the run alive.
func Build(question string, chart Chart, table sqlexec.Table) (*Spec, error) {
	if chart == ChartNone {
		return nil, fmt.Errorf("chart kind %q cannot be built", chart)
	}
	if table.IsEmpty() {
		return nil, fmt.Errorf("cannot chart an empty result")
	}

	kinds := ClassifyColumns(table)
	yCol := firstOfKind(kinds, KindNumeric, -1)
	if yCol < 0 {
		return nil, fmt.Errorf("no numeric column to plot")
	}

	spec := &Spec{Kind: chart, Title: question, YLabel: table.Columns[yCol]}

	var xCol int
	switch chart {
	case ChartLine:
		xCol = firstOfKind(kinds, KindTemporal, yCol)
		if xCol < 0 {
			xCol = firstOfKind(kinds, KindCategorical, yCol)
		}
	case ChartBar, ChartPie:
		xCol = firstOfKind(kinds, KindCategorical, yCol)
		if xCol < 0 {
			xCol = firstOfKind(kinds, KindTemporal, yCol)
		}
	case ChartScatter:
		xCol = firstOfKind(kinds, KindNumeric, yCol)
		if xCol < 0 {
			return nil, fmt.Errorf("scatter plot needs two numeric columns")
		}
		// The first numeric column becomes x, so y moves to the second.
		xCol, yCol = yCol, xCol
		spec.YLabel = table.Columns[yCol]
	default:
		return nil, fmt.Errorf("unknown chart kind %q", chart)
	}
	if xCol < 0 {
		return nil, fmt.Errorf("no column usable as the %s chart axis", chart)
	}
	spec.XLabel = table.Columns[xCol]

	rows := table.Rows
	if len(rows) > MaxPoints {
		rows = rows[:MaxPoints]
		spec.Truncated = true
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		if xCol >= len(row) || yCol >= len(row) {
			continue
		}
		y, ok := toFloat(row[yCol])
		if !ok {
			continue
		}
		point := Point{Y: y}
		if chart == ChartScatter {
			x, ok := toFloat(row[xCol])
			if !ok {
				continue
			}
			point.X = x
		} else {
			point.Label = formatLabel(row[xCol])
		}
		points = append(points, point)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no plottable rows for %s chart", chart)
	}
	spec.Points = points
	return spec, nil
}

func firstOfKind(kinds []ColumnKind, want ColumnKind, skip int) int {
	for i, kind := range kinds {
		if i == skip {
			continue
		}
		if kind == want {
			return i
		}
	}
	return -1
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func formatLabel(value any) string {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format("2006-01-02")
	case string:
		return typed
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}
