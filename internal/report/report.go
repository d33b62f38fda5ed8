// Package report renders an HTML utilisation report for ranked nesting
// results as a bar chart.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/NestCut/internal/model"
)

// WriteHTML renders the per-sheet efficiency comparison chart to w.
func WriteHTML(w io.Writer, design model.Design, results []model.NestResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Sheet utilisation — %s", design.Name),
			Subtitle: fmt.Sprintf("design area %.0f mm², %d candidate sheets", design.Area, len(results)),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "efficiency %", Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	sheets := make([]string, len(results))
	efficiency := make([]opts.BarData, len(results))
	counts := make([]opts.BarData, len(results))
	for i, r := range results {
		name := r.Sheet.Name
		if r.EdgeWarning {
			name += " ⚠"
		}
		sheets[i] = name
		efficiency[i] = opts.BarData{Value: r.Efficiency}
		counts[i] = opts.BarData{Value: r.Count}
	}

	bar.SetXAxis(sheets).
		AddSeries("efficiency %", efficiency).
		AddSeries("parts placed", counts)

	return bar.Render(w)
}

// WriteHTMLFile renders the report to a file.
func WriteHTMLFile(path string, design model.Design, results []model.NestResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return WriteHTML(f, design, results)
}
