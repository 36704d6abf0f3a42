package estimator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/contracts"
)

func twoAssetReturns() *contracts.AlignedReturns {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 4)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i+1)
	}
	return &contracts.AlignedReturns{
		Assets: contracts.AssetIndex{"A", "B"},
		Anchor: base,
		Dates:  dates,
		Columns: [][]float64{
			{0.01, -0.01, 0.02, 0.00},
			{0.00, 0.01, -0.01, 0.02},
		},
	}
}

func TestEstimate_TwoAssets(t *testing.T) {
	stats, err := Estimate(twoAssetReturns(), DefaultPeriodsPerYear)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.N())
	assert.Equal(t, 4, stats.Observations)

	// mean 0.005 × 252
	assert.InDelta(t, 1.26, stats.ExpectedReturns[0], 1e-12)
	assert.InDelta(t, 1.26, stats.ExpectedReturns[1], 1e-12)

	// 일간 표본분산 5e-4/3, 공분산 -4e-4/3
	varDaily := 5e-4 / 3
	covDaily := -4e-4 / 3
	assert.InDelta(t, varDaily*252, stats.Covariance.At(0, 0), 1e-12)
	assert.InDelta(t, varDaily*252, stats.Covariance.At(1, 1), 1e-12)
	assert.InDelta(t, covDaily*252, stats.Covariance.At(0, 1), 1e-12)
	assert.Equal(t, stats.Covariance.At(0, 1), stats.Covariance.At(1, 0))
}

func TestEstimate_SingleAsset(t *testing.T) {
	r := twoAssetReturns()
	r.Assets = r.Assets[:1]
	r.Columns = r.Columns[:1]

	stats, err := Estimate(r, 12)
	require.NoError(t, err)
	r0, c0 := stats.Covariance.Dims()
	assert.Equal(t, 1, r0)
	assert.Equal(t, 1, c0)
	assert.InDelta(t, 5e-4/3*12, stats.Covariance.At(0, 0), 1e-12)
}

func TestEstimate_Errors(t *testing.T) {
	_, err := Estimate(twoAssetReturns(), 0)
	assert.True(t, errors.Is(err, ErrInvalidPeriods))

	r := twoAssetReturns()
	r.Dates = r.Dates[:1]
	r.Columns = [][]float64{{0.01}, {0.02}}
	_, err = Estimate(r, DefaultPeriodsPerYear)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientData))

	r = twoAssetReturns()
	r.Columns[1] = r.Columns[1][:3]
	_, err = Estimate(r, DefaultPeriodsPerYear)
	assert.Error(t, err)
}

func TestStatistics_Clone(t *testing.T) {
	stats, err := Estimate(twoAssetReturns(), DefaultPeriodsPerYear)
	require.NoError(t, err)

	c := stats.Clone()
	c.ExpectedReturns[0] = 99
	c.Covariance.SetSym(0, 1, 99)

	assert.InDelta(t, 1.26, stats.ExpectedReturns[0], 1e-12)
	assert.NotEqual(t, 99.0, stats.Covariance.At(0, 1))
}
