package contracts

import (
	"fmt"
	"math"
	"sort"
)

// WeightTolerance is the allowed deviation of a weight sum from 1
const WeightTolerance = 1e-6

// Bounds is the per-asset weight range applied to every asset
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// DefaultBounds is long-only, no leverage
var DefaultBounds = Bounds{Lower: 0, Upper: 1}

// Feasible checks that some vector with n entries summing to 1 fits the bounds
func (b Bounds) Feasible(n int) error {
	fn := float64(n)
	if n < 1 || b.Lower > b.Upper || fn*b.Lower > 1+WeightTolerance || fn*b.Upper < 1-WeightTolerance {
		return &InvalidBoundsError{Lower: b.Lower, Upper: b.Upper, Assets: n}
	}
	return nil
}

// Contains reports whether w lies inside the bounds (with tolerance)
func (b Bounds) Contains(w float64) bool {
	return w >= b.Lower-WeightTolerance && w <= b.Upper+WeightTolerance
}

// WeightVector maps ticker → weight
// ⭐ 계약: 합계 1 (±1e-6), 자산당 정확히 하나, bounds 이내
type WeightVector map[string]float64

// Sum returns the total weight
func (w WeightVector) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Slice returns weights in AssetIndex order
func (w WeightVector) Slice(idx AssetIndex) []float64 {
	out := make([]float64, idx.Len())
	for i, t := range idx {
		out[i] = w[t]
	}
	return out
}

// Tickers returns the tickers sorted alphabetically
func (w WeightVector) Tickers() []string {
	out := make([]string, 0, len(w))
	for t := range w {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate checks the vector against an asset index and bounds.
// Never corrects the input.
func (w WeightVector) Validate(idx AssetIndex, bounds Bounds) error {
	for t := range w {
		if !idx.Contains(t) {
			return &InvalidWeightsError{Ticker: t, Reason: "unknown asset"}
		}
	}
	for _, t := range idx {
		v, ok := w[t]
		if !ok {
			return &InvalidWeightsError{Ticker: t, Reason: "missing weight"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidWeightsError{Ticker: t, Reason: "weight is not finite"}
		}
		if !bounds.Contains(v) {
			return &InvalidWeightsError{
				Ticker: t,
				Reason: fmt.Sprintf("weight %g outside bounds [%g, %g]", v, bounds.Lower, bounds.Upper),
			}
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > WeightTolerance {
		return &InvalidWeightsError{Reason: fmt.Sprintf("weights sum to %g, want 1", sum)}
	}
	return nil
}

// WeightsFromSlice builds a vector from values in AssetIndex order
func WeightsFromSlice(idx AssetIndex, values []float64) WeightVector {
	w := make(WeightVector, idx.Len())
	for i, t := range idx {
		w[t] = values[i]
	}
	return w
}

// EqualWeights returns 1/n for every asset
func EqualWeights(idx AssetIndex) WeightVector {
	w := make(WeightVector, idx.Len())
	if idx.Len() == 0 {
		return w
	}
	each := 1.0 / float64(idx.Len())
	for _, t := range idx {
		w[t] = each
	}
	return w
}
