package optimizer

import (
	"sort"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/estimator"
)

// risklessVertex handles zero-variance assets whose return beats rf.
// Sharpe is unbounded as weight moves onto them, so the solver would stall
// next to the vertex with an exploding ratio. When the budget fits entirely
// in such assets (everything else at its lower bound, portfolio volatility
// below VolatilityFloor) that vertex is returned instead.
func risklessVertex(s *estimator.Statistics, riskFree float64, b contracts.Bounds) ([]float64, bool) {
	n := s.N()
	floor2 := VolatilityFloor * VolatilityFloor

	var candidates []int
	for i := 0; i < n; i++ {
		if s.Covariance.At(i, i) <= floor2 && s.ExpectedReturns[i] > riskFree {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	// 초과수익이 큰 자산부터 상한까지 채움
	sort.SliceStable(candidates, func(a, c int) bool {
		return s.ExpectedReturns[candidates[a]] > s.ExpectedReturns[candidates[c]]
	})

	w := make([]float64, n)
	budget := 1.0
	for i := range w {
		w[i] = b.Lower
		budget -= b.Lower
	}
	for _, i := range candidates {
		add := min(b.Upper-b.Lower, budget)
		w[i] += add
		budget -= add
	}

	if budget > contracts.WeightTolerance || PortfolioVolatility(w, s) >= VolatilityFloor {
		return nil, false
	}
	return w, true
}
