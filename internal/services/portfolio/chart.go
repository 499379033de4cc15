package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/milhas/internal/models"
)

// RenderProfitChart renders a PNG line chart from operations in
// chronological order. Two series: cumulative profit (green solid) and
// profit per operation (gray dashed). X is the operation sequence number.
func RenderProfitChart(ops []models.Operation) ([]byte, error) {
	if len(ops) < minChartOperations {
		return nil, fmt.Errorf("need at least %d operations, got %d", minChartOperations, len(ops))
	}

	xValues := make([]float64, len(ops))
	cumulativeY := make([]float64, len(ops))
	profitY := make([]float64, len(ops))

	var running float64
	for i, op := range ops {
		running += op.Profit
		xValues[i] = float64(i + 1)
		cumulativeY[i] = running
		profitY[i] = op.Profit
	}

	cumulativeSeries := chart.ContinuousSeries{
		Name: "Cumulative Profit",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("00c853"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: cumulativeY,
	}

	profitSeries := chart.ContinuousSeries{
		Name: "Profit per Operation",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: profitY,
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("R$ %.0f", f)
			}
			return ""
		},
	}
	// A flat history has a zero y-range which go-chart refuses to draw.
	if lo, hi := bounds(cumulativeY, profitY); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Title:  "Projected Profit",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("#%.0f", f)
				}
				return ""
			},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			cumulativeSeries,
			profitSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func bounds(series ...[]float64) (lo, hi float64) {
	first := true
	for _, s := range series {
		for _, v := range s {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	return lo, hi
}
