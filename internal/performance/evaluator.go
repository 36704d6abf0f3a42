// Package performance evaluates a static weight vector over aligned returns.
package performance

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/optimizer"
)

// Evaluator turns weights into metrics.
// ⭐ SSOT: 원본/최적화/벤치마크 모두 동일한 계산 경로 사용
type Evaluator struct {
	PeriodsPerYear float64
	RiskFreeRate   float64
}

// NewEvaluator creates an evaluator
func NewEvaluator(periodsPerYear, riskFreeRate float64) *Evaluator {
	return &Evaluator{
		PeriodsPerYear: periodsPerYear,
		RiskFreeRate:   riskFreeRate,
	}
}

// Evaluation is the result of evaluating one allocation
type Evaluation struct {
	Returns []float64 // 기간 수익률
	Metrics contracts.MetricsRecord
	Risk    contracts.RiskSummary

	anchor time.Time
	dates  []time.Time
}

// Cumulative returns a fresh cursor over the cumulative-return series
func (ev *Evaluation) Cumulative() *Cursor {
	return NewCursor(ev.anchor, ev.dates, ev.Returns)
}

// Evaluate computes Σ_i w_i r_{i,t} for every row and summarizes it
func (e *Evaluator) Evaluate(r *contracts.AlignedReturns, w contracts.WeightVector) (*Evaluation, error) {
	if err := checkCoverage(r.Assets, w); err != nil {
		return nil, err
	}

	weights := w.Slice(r.Assets)
	periodic := make([]float64, r.Rows())
	for t := range periodic {
		var sum float64
		for i, col := range r.Columns {
			sum += weights[i] * col[t]
		}
		periodic[t] = sum
	}

	return e.evaluation(r, periodic), nil
}

// EvaluateBenchmark treats the benchmark column as a 100% position
func (e *Evaluator) EvaluateBenchmark(r *contracts.AlignedReturns) (*Evaluation, error) {
	if !r.HasBenchmark() {
		return nil, fmt.Errorf("no benchmark column")
	}
	periodic := make([]float64, len(r.Benchmark.Returns))
	copy(periodic, r.Benchmark.Returns)
	return e.evaluation(r, periodic), nil
}

// Metrics annualizes a periodic return series: mean × ppy, sample std × sqrt(ppy)
func (e *Evaluator) Metrics(periodic []float64) contracts.MetricsRecord {
	if len(periodic) == 0 {
		return contracts.MetricsRecord{}
	}

	ret := stat.Mean(periodic, nil) * e.PeriodsPerYear

	vol := 0.0
	if len(periodic) > 1 {
		vol = stat.StdDev(periodic, nil) * math.Sqrt(e.PeriodsPerYear)
	}

	return contracts.MetricsRecord{
		AnnualizedReturn:     ret,
		AnnualizedVolatility: vol,
		SharpeRatio:          optimizer.Sharpe(ret, vol, e.RiskFreeRate),
	}
}

func (e *Evaluator) evaluation(r *contracts.AlignedReturns, periodic []float64) *Evaluation {
	return &Evaluation{
		Returns: periodic,
		Metrics: e.Metrics(periodic),
		Risk:    RiskSummary(periodic),
		anchor:  r.Anchor,
		dates:   r.Dates,
	}
}

// checkCoverage requires exactly one weight per asset
func checkCoverage(idx contracts.AssetIndex, w contracts.WeightVector) error {
	for t := range w {
		if !idx.Contains(t) {
			return &contracts.InvalidWeightsError{Ticker: t, Reason: "unknown asset"}
		}
	}
	for _, t := range idx {
		if _, ok := w[t]; !ok {
			return &contracts.InvalidWeightsError{Ticker: t, Reason: "missing weight"}
		}
	}
	return nil
}
