package optimizer

import (
	"gonum.org/v1/gonum/floats"

	"github.com/wonny/frontier/internal/contracts"
)

const maxBisections = 200

// projectCappedSimplex writes into dst the Euclidean projection of v onto
// {x : Σx = 1, lower ≤ x_i ≤ upper}. dst may alias v.
//
// The projection is clip(v - τ) for the τ solving Σ clip(v_i - τ) = 1.
// The sum is non-increasing in τ, so τ is found by bisection.
// Bounds must be feasible for len(v).
func projectCappedSimplex(dst, v []float64, b contracts.Bounds) {
	lo := floats.Min(v) - b.Upper // 전부 upper → 합 ≥ 1
	hi := floats.Max(v) - b.Lower // 전부 lower → 합 ≤ 1

	for i := 0; i < maxBisections && hi-lo > 1e-15; i++ {
		tau := 0.5 * (lo + hi)
		if clippedSum(v, tau, b) > 1 {
			lo = tau
		} else {
			hi = tau
		}
	}

	tau := 0.5 * (lo + hi)
	for i := range v {
		dst[i] = clip(v[i]-tau, b)
	}
}

func clippedSum(v []float64, tau float64, b contracts.Bounds) float64 {
	sum := 0.0
	for _, x := range v {
		sum += clip(x-tau, b)
	}
	return sum
}

func clip(x float64, b contracts.Bounds) float64 {
	if x < b.Lower {
		return b.Lower
	}
	if x > b.Upper {
		return b.Upper
	}
	return x
}

// postProcess renormalizes w to sum 1 and clips into bounds, in place
func postProcess(w []float64, b contracts.Bounds) {
	if sum := floats.Sum(w); sum > 0 {
		floats.Scale(1/sum, w)
	}
	for i := range w {
		w[i] = clip(w[i], b)
	}
}
