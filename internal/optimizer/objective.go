package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/frontier/internal/estimator"
)

// VolatilityFloor is the volatility below which Sharpe is reported as 0
const VolatilityFloor = 1e-10

// PortfolioReturn returns wᵀμ
func PortfolioReturn(w []float64, s *estimator.Statistics) float64 {
	return floats.Dot(w, s.ExpectedReturns)
}

// PortfolioVolatility returns sqrt(max(0, wᵀΣw))
func PortfolioVolatility(w []float64, s *estimator.Statistics) float64 {
	v := mat.NewVecDense(len(w), w)
	return math.Sqrt(math.Max(0, mat.Inner(v, s.Covariance, v)))
}

// Sharpe returns (ret - rf) / vol, or 0 when vol is below VolatilityFloor
func Sharpe(ret, vol, riskFree float64) float64 {
	if vol < VolatilityFloor {
		return 0
	}
	return (ret - riskFree) / vol
}

// SharpeRatio evaluates the Sharpe ratio of w
func SharpeRatio(w []float64, s *estimator.Statistics, riskFree float64) float64 {
	return Sharpe(PortfolioReturn(w, s), PortfolioVolatility(w, s), riskFree)
}

// objectiveFunc returns f(w) and writes ∇f(w) into grad when grad is non-nil.
// 클로저 내부 버퍼를 재사용하므로 goroutine 간 공유 금지
type objectiveFunc func(w, grad []float64) float64

// volatilityObjective: f = sqrt(wᵀΣw), ∇f = Σw / f
func volatilityObjective(s *estimator.Statistics) objectiveFunc {
	n := s.N()
	sw := mat.NewVecDense(n, nil)

	return func(w, grad []float64) float64 {
		wv := mat.NewVecDense(n, w)
		sw.MulVec(s.Covariance, wv)
		vol := math.Sqrt(math.Max(0, mat.Dot(wv, sw)))

		if grad != nil {
			if vol < VolatilityFloor {
				for i := range grad {
					grad[i] = 0
				}
			} else {
				for i := range grad {
					grad[i] = sw.AtVec(i) / vol
				}
			}
		}
		return vol
	}
}

// negSharpeObjective: f = -(wᵀμ - rf) / vol
// ∇f = -(μ·vol - (ret - rf)·Σw/vol) / vol²
func negSharpeObjective(s *estimator.Statistics, riskFree float64) objectiveFunc {
	n := s.N()
	sw := mat.NewVecDense(n, nil)

	return func(w, grad []float64) float64 {
		wv := mat.NewVecDense(n, w)
		sw.MulVec(s.Covariance, wv)
		vol := math.Sqrt(math.Max(0, mat.Dot(wv, sw)))
		excess := floats.Dot(w, s.ExpectedReturns) - riskFree

		if vol < VolatilityFloor {
			for i := range grad {
				grad[i] = 0
			}
			return 0
		}

		if grad != nil {
			vol2 := vol * vol
			for i := range grad {
				grad[i] = -(s.ExpectedReturns[i]*vol - excess*sw.AtVec(i)/vol) / vol2
			}
		}
		return -excess / vol
	}
}
