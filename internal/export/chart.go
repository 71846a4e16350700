package export

import (
	"errors"
	"fmt"
	"io"

	"fintrack/internal/core"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

var (
	incomeColor  = drawing.Color{R: 22, G: 163, B: 74, A: 255}
	expenseColor = drawing.Color{R: 220, G: 38, B: 38, A: 255}

	ErrUnknownChart = errors.New("unknown chart kind")
)

func ParseChartKind(s string) (ChartKind, error) {
	switch ChartKind(s) {
	case "", ChartLine:
		return ChartLine, nil
	case ChartBar:
		return ChartBar, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownChart, s)
}

// RenderChart draws monthly income against expenses as a PNG. A line
// needs two points, so a single month is always drawn as bars.
func RenderChart(w io.Writer, months []core.MonthSummary, kind ChartKind) error {
	if len(months) == 0 {
		return ErrNothingToExport
	}
	if kind == ChartLine && len(months) > 1 {
		return lineChart(w, months)
	}
	if kind != ChartLine && kind != ChartBar {
		return fmt.Errorf("%w %q", ErrUnknownChart, kind)
	}
	return barChart(w, months)
}

func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
}

func lineChart(w io.Writer, months []core.MonthSummary) error {
	xs := make([]float64, len(months))
	income := make([]float64, len(months))
	expenses := make([]float64, len(months))
	ticks := make([]chart.Tick, len(months))
	for i, m := range months {
		xs[i] = float64(i)
		income[i] = m.Income.Float64()
		expenses[i] = m.Expenses.Float64()
		ticks[i] = chart.Tick{Value: float64(i), Label: m.MonthKey}
	}

	graph := chart.Chart{
		Title:      "Income vs Expenses",
		Background: padding(),
		Width:      900,
		Height:     420,
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis:      chart.YAxis{ValueFormatter: moneyTick},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Income",
				XValues: xs,
				YValues: income,
				Style:   chart.Style{StrokeColor: incomeColor, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Expenses",
				XValues: xs,
				YValues: expenses,
				Style:   chart.Style{StrokeColor: expenseColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// barChart places each month's income and expense bars side by side.
func barChart(w io.Writer, months []core.MonthSummary) error {
	bars := make([]chart.Value, 0, 2*len(months))
	for _, m := range months {
		bars = append(bars,
			chart.Value{
				Label: m.MonthKey + " in",
				Value: m.Income.Float64(),
				Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
			},
			chart.Value{
				Label: m.MonthKey + " out",
				Value: m.Expenses.Float64(),
				Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
			},
		)
	}

	bc := chart.BarChart{
		Title:      "Income vs Expenses",
		Background: padding(),
		Width:      max(600, 120*len(months)),
		Height:     420,
		BarWidth:   40,
		Bars:       bars,
	}
	bc.YAxis.ValueFormatter = moneyTick
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func moneyTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}
