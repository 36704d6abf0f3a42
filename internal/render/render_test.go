package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/analysis"
	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/pkg/logger"
)

var pngMagic = []byte("\x89PNG")

func series(ticker string, rs []float64) contracts.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := contracts.PriceSeries{Ticker: ticker, Points: []contracts.PricePoint{{Date: start, Close: 100}}}
	p := 100.0
	for i, r := range rs {
		p *= 1 + r
		s.Points = append(s.Points, contracts.PricePoint{Date: start.AddDate(0, 0, i+1), Close: p})
	}
	return s
}

func testReport(t *testing.T) *analysis.Report {
	t.Helper()
	bench := series("^GSPC", []float64{0.004, 0.001, 0.002, 0.003, -0.001, 0.002})
	in := analysis.Input{
		Portfolio: "Tech Core",
		Assets: []contracts.PriceSeries{
			series("AAPL", []float64{0.01, -0.004, 0.012, 0.003, -0.006, 0.008}),
			series("MSFT", []float64{0.004, 0.006, -0.002, 0.005, 0.001, -0.003}),
			series("GOOGL", []float64{-0.006, 0.011, 0.002, -0.004, 0.009, 0.001}),
		},
		Benchmark: &bench,
		Weights:   contracts.WeightVector{"AAPL": 0.4, "MSFT": 0.3, "GOOGL": 0.3},
		Options:   analysis.DefaultOptions(),
	}
	r, err := analysis.NewRunner(logger.Nop()).Run(context.Background(), in)
	require.NoError(t, err)
	return r
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.34%", Percent(0.1234))
	assert.Equal(t, "12.35%", Percent(0.12345))
	assert.Equal(t, "-5.00%", Percent(-0.05))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "1.23", Ratio(1.23456))
	assert.Equal(t, "0.3333", Weight(1.0/3))
	assert.Equal(t, "0.0000", Weight(0))
	assert.Equal(t, 0.6667, RoundWeight(2.0/3))
}

func TestMetricsTable(t *testing.T) {
	r := testReport(t)
	rows := MetricsTable(r)
	require.Len(t, rows, 4)

	assert.Equal(t, "Original", rows[0].Portfolio)
	assert.Equal(t, "Max Sharpe", rows[1].Portfolio)
	assert.Equal(t, "Min Volatility", rows[2].Portfolio)
	assert.Equal(t, "S&P 500", rows[3].Portfolio)

	orig, _ := r.Allocation(analysis.AllocationOriginal)
	assert.Equal(t, Percent(orig.Metrics.AnnualizedReturn), rows[0].AnnualReturn)
	assert.True(t, strings.HasSuffix(rows[0].Volatility, "%"))
}

func TestAllocationTable(t *testing.T) {
	r := testReport(t)
	headers, rows := AllocationTable(r)

	assert.Equal(t, []string{"Original", "Max Sharpe", "Min Volatility"}, headers)
	require.Len(t, rows, 3)
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, "0.4000", rows[0].Weights[0])
	assert.Equal(t, "0.3000", rows[2].Weights[0])
}

func TestWriteText(t *testing.T) {
	r := testReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Tech Core")
	assert.Contains(t, out, "Annual Return")
	assert.Contains(t, out, "S&P 500")
	assert.Contains(t, out, "2024-01-01 ~ 2024-01-07")
	assert.Contains(t, out, "GOOGL")
}

func TestCumulativeChart(t *testing.T) {
	buf, err := CumulativeChart(testReport(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))
}

func TestCumulativeChart_Empty(t *testing.T) {
	_, err := CumulativeChart(&analysis.Report{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestAllocationPie(t *testing.T) {
	r := testReport(t)
	orig, _ := r.Allocation(analysis.AllocationOriginal)

	buf, err := AllocationPie(*orig, r.Assets)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))

	_, err = AllocationPie(analysis.Allocation{Weights: contracts.WeightVector{"A": 0.00001}}, []string{"A"})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestWriteCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := WriteCharts(dir, testReport(t))
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, name := range []string{"cumulative.png", "original_allocation.png", "max_sharpe_allocation.png", "min_volatility_allocation.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, pngMagic), name)
	}
}
