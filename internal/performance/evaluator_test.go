package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/estimator"
	"github.com/wonny/frontier/internal/optimizer"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func twoAssetReturns() *contracts.AlignedReturns {
	return &contracts.AlignedReturns{
		Assets: contracts.AssetIndex{"A", "B"},
		Anchor: day(1),
		Dates:  []time.Time{day(4), day(5), day(6), day(7)},
		Columns: [][]float64{
			{0.01, -0.01, 0.02, 0.00},
			{0.00, 0.01, -0.01, 0.02},
		},
		Benchmark: &contracts.Column{
			Ticker:  "^GSPC",
			Returns: []float64{0.005, -0.002, 0.003, 0.001},
		},
	}
}

func TestEvaluate_TwoAssetHandValues(t *testing.T) {
	ev := NewEvaluator(252, 0)
	res, err := ev.Evaluate(twoAssetReturns(), contracts.WeightVector{"A": 0.5, "B": 0.5})
	require.NoError(t, err)

	want := []float64{0.005, 0, 0.005, 0.01}
	for i := range want {
		assert.InDelta(t, want[i], res.Returns[i], 1e-15)
	}

	wantVol := math.Sqrt(5e-5/3) * math.Sqrt(252)
	assert.InDelta(t, 1.26, res.Metrics.AnnualizedReturn, 1e-9)
	assert.InDelta(t, wantVol, res.Metrics.AnnualizedVolatility, 1e-9)
	assert.InDelta(t, 1.26/wantVol, res.Metrics.SharpeRatio, 1e-9)
}

func TestEvaluate_MatchesObjectiveFunctions(t *testing.T) {
	r := twoAssetReturns()
	stats, err := estimator.Estimate(r, 252)
	require.NoError(t, err)

	w := contracts.WeightVector{"A": 0.3, "B": 0.7}
	res, err := NewEvaluator(252, 0.02).Evaluate(r, w)
	require.NoError(t, err)

	ws := w.Slice(r.Assets)
	assert.InDelta(t, optimizer.PortfolioReturn(ws, stats), res.Metrics.AnnualizedReturn, 1e-12)
	assert.InDelta(t, optimizer.PortfolioVolatility(ws, stats), res.Metrics.AnnualizedVolatility, 1e-12)
	assert.InDelta(t, optimizer.SharpeRatio(ws, stats, 0.02), res.Metrics.SharpeRatio, 1e-9)
}

func TestEvaluate_ZeroVarianceAsset(t *testing.T) {
	r := &contracts.AlignedReturns{
		Assets:  contracts.AssetIndex{"CASH"},
		Anchor:  day(1),
		Dates:   []time.Time{day(2), day(3), day(4)},
		Columns: [][]float64{{0, 0, 0}},
	}

	res, err := NewEvaluator(252, 0).Evaluate(r, contracts.WeightVector{"CASH": 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Metrics.AnnualizedVolatility)
	assert.Equal(t, 0.0, res.Metrics.SharpeRatio)
}

func TestEvaluate_WeightCoverage(t *testing.T) {
	ev := NewEvaluator(252, 0)

	_, err := ev.Evaluate(twoAssetReturns(), contracts.WeightVector{"A": 1})
	assert.ErrorIs(t, err, contracts.ErrInvalidWeights)

	_, err = ev.Evaluate(twoAssetReturns(), contracts.WeightVector{"A": 0.5, "B": 0.4, "C": 0.1})
	assert.ErrorIs(t, err, contracts.ErrInvalidWeights)
}

func TestEvaluateBenchmark(t *testing.T) {
	r := twoAssetReturns()
	ev := NewEvaluator(252, 0)

	res, err := ev.EvaluateBenchmark(r)
	require.NoError(t, err)
	assert.InDelta(t, 0.00175*252, res.Metrics.AnnualizedReturn, 1e-12)
	assert.Equal(t, r.Benchmark.Returns, res.Returns)

	r.Benchmark = nil
	_, err = ev.EvaluateBenchmark(r)
	assert.Error(t, err)
}

func TestCumulativeCursor(t *testing.T) {
	res, err := NewEvaluator(252, 0).Evaluate(twoAssetReturns(), contracts.WeightVector{"A": 0.5, "B": 0.5})
	require.NoError(t, err)

	cursor := res.Cumulative()
	points := Collect(cursor)
	require.Len(t, points, 5)

	assert.Equal(t, day(1), points[0].Date)
	assert.Equal(t, 0.0, points[0].Value)
	assert.InDelta(t, 0.005, points[1].Value, 1e-15)
	assert.InDelta(t, 0.005, points[2].Value, 1e-15)
	assert.InDelta(t, 1.005*1.005-1, points[3].Value, 1e-15)
	assert.InDelta(t, 1.005*1.005*1.01-1, points[4].Value, 1e-15)
	assert.Equal(t, day(7), points[4].Date)

	// 소진된 cursor는 재시작되지 않음
	_, ok := cursor.Next()
	assert.False(t, ok)

	// 새 cursor는 처음부터
	fresh := Collect(res.Cumulative())
	assert.Equal(t, points, fresh)
	assert.InDelta(t, res.Risk.TotalReturn, fresh[len(fresh)-1].Value, 1e-15)
}
