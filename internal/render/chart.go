package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/wonny/frontier/internal/analysis"
)

// Chart dimensions in pixels
const (
	LineWidth  = 1000
	LineHeight = 600
	PieWidth   = 800
	PieHeight  = 600
)

// ErrNothingToPlot is returned for a report without cumulative points
var ErrNothingToPlot = errors.New("nothing to plot")

// CumulativeChart renders the cumulative return of every allocation as
// one PNG line chart, in percent
func CumulativeChart(r *analysis.Report) ([]byte, error) {
	if len(r.Allocations) == 0 || len(r.Allocations[0].Cumulative) < 2 {
		return nil, ErrNothingToPlot
	}

	points := r.Allocations[0].Cumulative
	xLabels := make([]string, len(points))
	for i, p := range points {
		xLabels[i] = p.Date.Format("2006-01-02")
	}

	names := make([]string, 0, len(r.Allocations))
	values := make([][]float64, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		names = append(names, Label(r, a))
		v := make([]float64, len(a.Cumulative))
		for i, p := range a.Cumulative {
			v[i] = p.Value * 100
		}
		values = append(values, v)
	}

	split := 6
	if len(xLabels) <= 30 {
		split = len(xLabels) / 3
		if split < 2 {
			split = 2
		}
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(r.Portfolio+" • Cumulative Return",
			fmt.Sprintf("%s ~ %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Formatter:   "{value}%",
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(LineWidth),
		charts.HeightOptionFunc(LineHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// AllocationPie renders one portfolio's weights as a PNG pie chart.
// Weights that round to zero are left out.
func AllocationPie(a analysis.Allocation, tickers []string) ([]byte, error) {
	var values []float64
	var labels []string
	for _, t := range tickers {
		w := RoundWeight(a.Weights[t])
		if w <= 0 {
			continue
		}
		values = append(values, w)
		labels = append(labels, fmt.Sprintf("%s (%s)", t, Percent(w)))
	}
	if len(values) == 0 {
		return nil, ErrNothingToPlot
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(a.Label+" Allocation"),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(PieWidth),
		charts.HeightOptionFunc(PieHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pie: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pie bytes: %w", err)
	}
	return buf, nil
}

// WriteCharts writes cumulative.png and one <allocation>_allocation.png per
// portfolio into dir and returns the written paths
func WriteCharts(dir string, r *analysis.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	line, err := CumulativeChart(r)
	if err != nil {
		return nil, err
	}
	if err := write("cumulative.png", line); err != nil {
		return nil, err
	}

	for _, a := range r.Portfolios() {
		pie, err := AllocationPie(a, r.Assets)
		if err != nil {
			return written, fmt.Errorf("%s pie: %w", a.Name, err)
		}
		if err := write(a.Name+"_allocation.png", pie); err != nil {
			return written, err
		}
	}
	return written, nil
}
