package performance

import (
	"math"
	"sort"

	"github.com/wonny/frontier/internal/contracts"
)

// TailConfidence is the confidence level of the reported VaR/CVaR
const TailConfidence = 0.95

// RiskSummary computes total return, max drawdown and historical VaR/CVaR
// of a periodic return series
func RiskSummary(returns []float64) contracts.RiskSummary {
	v, cv := HistoricalVaR(returns, TailConfidence)
	return contracts.RiskSummary{
		TotalReturn: TotalReturn(returns),
		MaxDrawdown: MaxDrawdown(returns),
		VaR95:       v,
		CVaR95:      cv,
	}
}

// TotalReturn is cumprod(1+r) - 1 over the whole series
func TotalReturn(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return growth - 1
}

// MaxDrawdown returns the largest peak-to-trough decline (≤ 0).
// 시작 가치 1.0을 첫 고점으로 사용
func MaxDrawdown(returns []float64) float64 {
	value, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if dd := (value - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// HistoricalVaR returns VaR and CVaR (expected shortfall) by historical
// simulation. Losses are positive; no loss in the tail gives 0.
func HistoricalVaR(returns []float64, confidence float64) (float64, float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	// 오름차순: 손실이 앞에
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	var tail float64
	for _, r := range sorted[:idx+1] {
		tail += r
	}
	tail /= float64(idx + 1)

	return math.Max(0, -sorted[idx]), math.Max(0, -tail)
}
