package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/pkg/logger"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// pricesFromReturns builds a close series starting at 100 on start
func pricesFromReturns(ticker string, rs []float64) contracts.PriceSeries {
	s := contracts.PriceSeries{Ticker: ticker}
	p := 100.0
	s.Points = append(s.Points, contracts.PricePoint{Date: start, Close: p})
	for i, r := range rs {
		p *= 1 + r
		s.Points = append(s.Points, contracts.PricePoint{Date: start.AddDate(0, 0, i+1), Close: p})
	}
	return s
}

func twoAssetInput() Input {
	return Input{
		Portfolio: "pair",
		Assets: []contracts.PriceSeries{
			pricesFromReturns("A", []float64{0.01, -0.01, 0.02, 0.00}),
			pricesFromReturns("B", []float64{0.00, 0.01, -0.01, 0.02}),
		},
		Weights: contracts.WeightVector{"A": 0.5, "B": 0.5},
		Options: DefaultOptions(),
	}
}

func threeAssetInput() Input {
	return Input{
		Portfolio: "trio",
		Assets: []contracts.PriceSeries{
			pricesFromReturns("A", []float64{0.02, -0.01, 0.015, 0.005, -0.002, 0.01}),
			pricesFromReturns("B", []float64{0.001, 0.002, -0.001, 0.003, 0.000, 0.001}),
			pricesFromReturns("C", []float64{-0.01, 0.03, -0.02, 0.025, 0.01, -0.005}),
		},
		Benchmark: ptr(pricesFromReturns("^GSPC", []float64{0.005, 0.001, -0.004, 0.006, 0.002, 0.001})),
		Weights:   contracts.WeightVector{"A": 0.2, "B": 0.5, "C": 0.3},
		Options:   DefaultOptions(),
	}
}

func ptr[T any](v T) *T { return &v }

func TestRun_TwoAssetExample(t *testing.T) {
	report, err := NewRunner(logger.Nop()).Run(context.Background(), twoAssetInput())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "pair", report.Portfolio)
	assert.Equal(t, 4, report.Observations)
	assert.Equal(t, start, report.Start)
	assert.Equal(t, start.AddDate(0, 0, 4), report.End)
	assert.Empty(t, report.Benchmark)
	require.Len(t, report.Allocations, 3)

	original, ok := report.Allocation(AllocationOriginal)
	require.True(t, ok)

	// 동일 비중 포트폴리오 일간 수익률: 0.005, 0, 0.005, 0.01
	wantRet := 0.005 * 252
	wantVol := math.Sqrt(5e-5 / 3 * 252)
	assert.InDelta(t, wantRet, original.Metrics.AnnualizedReturn, 1e-9)
	assert.InDelta(t, wantVol, original.Metrics.AnnualizedVolatility, 1e-9)
	assert.InDelta(t, wantRet/wantVol, original.Metrics.SharpeRatio, 1e-6)

	for _, name := range []string{AllocationMaxSharpe, AllocationMinVolatility} {
		a, ok := report.Allocation(name)
		require.True(t, ok, name)
		require.NotNil(t, a.Optimization)
		assert.InDelta(t, 1.0, a.Weights.Sum(), 1e-6, name)
		assert.InDelta(t, 0.5, a.Weights["A"], 1e-6, name)
		assert.False(t, a.FellBack)
	}
}

func TestRun_CumulativeStartsAtAnchor(t *testing.T) {
	report, err := NewRunner(nil).Run(context.Background(), twoAssetInput())
	require.NoError(t, err)

	for _, a := range report.Allocations {
		require.Len(t, a.Cumulative, 5, a.Name)
		assert.Equal(t, start, a.Cumulative[0].Date)
		assert.Equal(t, 0.0, a.Cumulative[0].Value)
	}

	original, _ := report.Allocation(AllocationOriginal)
	// (1.005)(1.0)(1.005)(1.01) - 1
	assert.InDelta(t, 1.005*1.005*1.01-1, original.Cumulative[4].Value, 1e-12)
}

func TestRun_WithBenchmark(t *testing.T) {
	report, err := NewRunner(logger.Nop()).Run(context.Background(), threeAssetInput())
	require.NoError(t, err)

	assert.Equal(t, "^GSPC", report.Benchmark)
	require.Len(t, report.Allocations, 4)
	assert.Len(t, report.Portfolios(), 3)

	bench, ok := report.Allocation(AllocationBenchmark)
	require.True(t, ok)
	assert.Equal(t, contracts.WeightVector{"^GSPC": 1}, bench.Weights)
	assert.Nil(t, bench.Optimization)

	eq, _ := report.Allocation(AllocationOriginal)
	ms, _ := report.Allocation(AllocationMaxSharpe)
	mv, _ := report.Allocation(AllocationMinVolatility)

	assert.GreaterOrEqual(t, ms.Metrics.SharpeRatio, eq.Metrics.SharpeRatio-1e-9)
	assert.LessOrEqual(t, mv.Metrics.AnnualizedVolatility, eq.Metrics.AnnualizedVolatility+1e-9)

	for _, a := range report.Portfolios() {
		assert.NoError(t, a.Weights.Validate(report.Assets, contracts.DefaultBounds), a.Name)
	}
}

func TestRun_FallbackToEqualWeight(t *testing.T) {
	in := threeAssetInput()
	in.Options.MaxIterations = 1
	in.Options.Tolerance = 1e-300

	report, err := NewRunner(logger.Nop()).Run(context.Background(), in)
	require.NoError(t, err)
	ms, _ := report.Allocation(AllocationMinVolatility)
	assert.False(t, ms.Optimization.Converged)
	assert.False(t, ms.FellBack, "fallback is opt-in")

	in.Options.FallbackToEqualWeight = true
	report, err = NewRunner(logger.Nop()).Run(context.Background(), in)
	require.NoError(t, err)

	for _, name := range []string{AllocationMaxSharpe, AllocationMinVolatility} {
		a, _ := report.Allocation(name)
		assert.True(t, a.FellBack, name)
		for _, w := range a.Weights {
			assert.InDelta(t, 1.0/3, w, 1e-12)
		}
		// 원래 결과는 그대로 보고
		assert.False(t, a.Optimization.Converged)
	}
}

func TestRun_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights contracts.WeightVector
	}{
		{"sum", contracts.WeightVector{"A": 0.5, "B": 0.4}},
		{"missing", contracts.WeightVector{"A": 1}},
		{"unknown", contracts.WeightVector{"A": 0.5, "B": 0.25, "Z": 0.25}},
		{"bounds", contracts.WeightVector{"A": 1.5, "B": -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := twoAssetInput()
			in.Weights = tt.weights
			_, err := NewRunner(logger.Nop()).Run(context.Background(), in)

			var iwe *contracts.InvalidWeightsError
			assert.True(t, errors.As(err, &iwe), "got %v", err)
		})
	}
}

func TestRun_InsufficientData(t *testing.T) {
	in := twoAssetInput()
	in.Assets[1] = contracts.PriceSeries{Ticker: "B", Points: []contracts.PricePoint{
		{Date: start.AddDate(1, 0, 0), Close: 10},
		{Date: start.AddDate(1, 0, 1), Close: 11},
	}}

	_, err := NewRunner(logger.Nop()).Run(context.Background(), in)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientData), "got %v", err)
}

func TestRun_SingleAsset(t *testing.T) {
	in := Input{
		Portfolio: "solo",
		Assets:    []contracts.PriceSeries{pricesFromReturns("SPY", []float64{0.01, -0.005, 0.002})},
		Weights:   contracts.WeightVector{"SPY": 1},
		Options:   DefaultOptions(),
	}

	report, err := NewRunner(logger.Nop()).Run(context.Background(), in)
	require.NoError(t, err)
	for _, a := range report.Portfolios() {
		assert.Equal(t, 1.0, a.Weights["SPY"], a.Name)
	}
}

func TestRun_ZeroVariance(t *testing.T) {
	in := Input{
		Portfolio: "cash",
		Assets:    []contracts.PriceSeries{pricesFromReturns("CASH", []float64{0, 0, 0})},
		Weights:   contracts.WeightVector{"CASH": 1},
		Options:   DefaultOptions(),
	}

	report, err := NewRunner(logger.Nop()).Run(context.Background(), in)
	require.NoError(t, err)
	original, _ := report.Allocation(AllocationOriginal)
	assert.Equal(t, 0.0, original.Metrics.SharpeRatio)
	assert.Equal(t, 0.0, original.Metrics.AnnualizedVolatility)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(logger.Nop()).Run(ctx, threeAssetInput())
	assert.ErrorIs(t, err, context.Canceled)
}
