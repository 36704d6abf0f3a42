// Package estimator computes annualized expected returns and covariance
// from aligned periodic returns.
package estimator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/frontier/internal/contracts"
)

// DefaultPeriodsPerYear is the trading-day count used for daily data
const DefaultPeriodsPerYear = 252

// ErrInvalidPeriods is returned for a non-positive annualization factor
var ErrInvalidPeriods = errors.New("periods_per_year must be positive")

// Statistics is the annualized estimate for one run.
// Immutable after Estimate returns; use Clone before handing to a goroutine
// that might keep it.
type Statistics struct {
	Assets          contracts.AssetIndex
	ExpectedReturns []float64     // 연환산 평균 수익률 (AssetIndex 순서)
	Covariance      *mat.SymDense // 연환산 표본 공분산 (N-1)
	PeriodsPerYear  float64
	Observations    int
}

// Estimate derives μ and Σ from the return columns.
// Annualization is arithmetic: mean × ppy and cov × ppy.
func Estimate(r *contracts.AlignedReturns, periodsPerYear float64) (*Statistics, error) {
	if periodsPerYear <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPeriods, periodsPerYear)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("aligned returns: %w", err)
	}

	rows, n := r.Rows(), r.Assets.Len()
	if n == 0 {
		return nil, &contracts.InsufficientDataError{Required: 1, Reason: "no assets"}
	}
	if rows < 2 {
		return nil, &contracts.InsufficientDataError{
			Observations: rows,
			Required:     2,
			Reason:       "return rows for covariance",
		}
	}

	// 관측치 × 자산 행렬
	data := mat.NewDense(rows, n, nil)
	for j, col := range r.Columns {
		data.SetCol(j, col)
	}

	mu := make([]float64, n)
	for j, col := range r.Columns {
		mu[j] = stat.Mean(col, nil) * periodsPerYear
	}

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, data, nil)
	cov.ScaleSym(periodsPerYear, cov)

	return &Statistics{
		Assets:          r.Assets,
		ExpectedReturns: mu,
		Covariance:      cov,
		PeriodsPerYear:  periodsPerYear,
		Observations:    rows,
	}, nil
}

// N returns the number of assets
func (s *Statistics) N() int {
	return len(s.ExpectedReturns)
}

// Clone returns a deep copy
func (s *Statistics) Clone() *Statistics {
	mu := make([]float64, len(s.ExpectedReturns))
	copy(mu, s.ExpectedReturns)

	cov := mat.NewSymDense(s.N(), nil)
	cov.CopySym(s.Covariance)

	assets := make(contracts.AssetIndex, len(s.Assets))
	copy(assets, s.Assets)

	return &Statistics{
		Assets:          assets,
		ExpectedReturns: mu,
		Covariance:      cov,
		PeriodsPerYear:  s.PeriodsPerYear,
		Observations:    s.Observations,
	}
}
