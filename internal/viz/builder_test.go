package viz

import (
	"fmt"
	"testing"
	"time"

	"github.com/storewise/storewise/internal/sqlexec"
)

func TestParseChart(t *testing.T) {
	cases := []struct {
		input string
		want  Chart
		ok    bool
	}{
		{"bar", ChartBar, true},
		{" Line \n", ChartLine, true},
		{"PIE", ChartPie, true},
		{"scatter", ChartScatter, true},
		{"none", ChartNone, true},
		{"histogram", ChartNone, false},
		{"", ChartNone, false},
	}
	for _, tc := range cases {
		got, ok := ParseChart(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseChart(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClassifyColumns(t *testing.T) {
	table := sqlexec.Table{
		Columns: []string{"month", "revenue", "status", "count_text", "mixed"},
		Rows: [][]any{
			{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 120.5, "shipped", "42", int64(1)},
			{time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), 98.0, "returned", "17", "oops"},
		},
	}
	kinds := ClassifyColumns(table)
	want := []ColumnKind{KindTemporal, KindNumeric, KindCategorical, KindNumeric, KindCategorical}
	for i, kind := range kinds {
		if kind != want[i] {
			t.Fatalf("column %q kind = %q, want %q", table.Columns[i], kind, want[i])
		}
	}
}

func TestClassifyColumnsTreatsDateStringsAsTemporal(t *testing.T) {
	table := sqlexec.Table{
		Columns: []string{"day"},
		Rows:    [][]any{{"2023-01-01"}, {"2023-01-02"}},
	}
	if kinds := ClassifyColumns(table); kinds[0] != KindTemporal {
		t.Fatalf("kind = %q, want %q", kinds[0], KindTemporal)
	}
}

func TestBuildMonthlyTrendLineChart(t *testing.T) {
	table := sqlexec.Table{Columns: []string{"month", "revenue"}}
	for m := 1; m <= 12; m++ {
		table.Rows = append(table.Rows, []any{
			time.Date(2023, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
			float64(1000 + m*10),
		})
	}

	spec, err := Build("Show monthly revenue trend for 2023", ChartLine, table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.Kind != ChartLine {
		t.Fatalf("kind = %q", spec.Kind)
	}
	if spec.XLabel != "month" || spec.YLabel != "revenue" {
		t.Fatalf("axes = (%q, %q), want month/revenue", spec.XLabel, spec.YLabel)
	}
	if len(spec.Points) != 12 {
		t.Fatalf("points = %d, want 12", len(spec.Points))
	}
	if spec.Points[0].Label != "2023-01-01" {
		t.Fatalf("first label = %q", spec.Points[0].Label)
	}
	if spec.Points[11].Y != 1120 {
		t.Fatalf("last y = %v", spec.Points[11].Y)
	}
	if spec.Truncated {
		t.Fatal("12 points should not be truncated")
	}
}

func TestBuildBarChartUsesCategoricalAxis(t *testing.T) {
	table := sqlexec.Table{
		Columns: []string{"total", "category"},
		Rows: [][]any{
			{int64(40), "jeans"},
			{int64(25), "tops"},
		},
	}
	spec, err := Build("Top categories", ChartBar, table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.XLabel != "category" || spec.YLabel != "total" {
		t.Fatalf("axes = (%q, %q)", spec.XLabel, spec.YLabel)
	}
	if spec.Points[0].Label != "jeans" || spec.Points[0].Y != 40 {
		t.Fatalf("first point = %+v", spec.Points[0])
	}
}

func TestBuildScatterPairsNumericColumns(t *testing.T) {
	table := sqlexec.Table{
		Columns: []string{"price", "orders"},
		Rows: [][]any{
			{9.5, int64(120)},
			{19.0, int64(80)},
		},
	}
	spec, err := Build("Price vs orders", ChartScatter, table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.XLabel != "price" || spec.YLabel != "orders" {
		t.Fatalf("axes = (%q, %q)", spec.XLabel, spec.YLabel)
	}
	if spec.Points[0].X != 9.5 || spec.Points[0].Y != 120 {
		t.Fatalf("first point = %+v", spec.Points[0])
	}
}

func TestBuildCapsPoints(t *testing.T) {
	table := sqlexec.Table{Columns: []string{"name", "value"}}
	for i := 0; i < MaxPoints+5; i++ {
		table.Rows = append(table.Rows, []any{fmt.Sprintf("p%02d", i), float64(i)})
	}
	spec, err := Build("Many points", ChartBar, table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(spec.Points) != MaxPoints {
		t.Fatalf("points = %d, want %d", len(spec.Points), MaxPoints)
	}
	if !spec.Truncated {
		t.Fatal("expected truncation past the point cap")
	}
}

func TestBuildRejectsUnusableTables(t *testing.T) {
	if _, err := Build("q", ChartBar, sqlexec.Table{Columns: []string{"a"}}); err == nil {
		t.Fatal("empty table should not build")
	}
	textOnly := sqlexec.Table{Columns: []string{"name"}, Rows: [][]any{{"a"}}}
	if _, err := Build("q", ChartBar, textOnly); err == nil {
		t.Fatal("table without numeric column should not build")
	}
	oneNumeric := sqlexec.Table{Columns: []string{"value"}, Rows: [][]any{{1.0}}}
	if _, err := Build("q", ChartScatter, oneNumeric); err == nil {
		t.Fatal("scatter needs two numeric columns")
	}
	if _, err := Build("q", ChartNone, oneNumeric); err == nil {
		t.Fatal("none chart should not build")
	}
}
