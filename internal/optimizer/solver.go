package optimizer

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/frontier/internal/contracts"
)

// Line search parameters
const (
	armijoC       = 1e-4
	maxBacktracks = 60
	stepTolerance = 1e-12 // 투영 스텝이 이보다 작으면 정지점
	minStep       = 1e-12
	maxStep       = 1e6
)

type solution struct {
	x          []float64
	f          float64
	iterations int
	converged  bool
}

// projectedGradient minimizes f over the capped simplex starting from a
// feasible x0. Every accepted step satisfies the Armijo condition, so the
// objective never increases. Trial steps use the Barzilai-Borwein length.
func projectedGradient(ctx context.Context, f objectiveFunc, x0 []float64, b contracts.Bounds, tol float64, maxIter int) (solution, error) {
	n := len(x0)
	x := make([]float64, n)
	copy(x, x0)

	grad := make([]float64, n)
	fx := f(x, grad)

	trial := make([]float64, n)
	trialGrad := make([]float64, n)
	dir := make([]float64, n)
	yk := make([]float64, n)

	alpha := 1.0
	for iter := 1; iter <= maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return solution{x: x, f: fx, iterations: iter - 1}, err
		}

		accepted := false
		var fy float64
		for bt := 0; bt < maxBacktracks; bt++ {
			for i := range x {
				trial[i] = x[i] - alpha*grad[i]
			}
			projectCappedSimplex(trial, trial, b)
			floats.SubTo(dir, trial, x)

			if floats.Norm(dir, math.Inf(1)) < stepTolerance {
				return solution{x: x, f: fx, iterations: iter - 1, converged: true}, nil
			}

			fy = f(trial, trialGrad)
			if fy <= fx+armijoC*floats.Dot(grad, dir) {
				accepted = true
				break
			}
			alpha *= 0.5
		}
		if !accepted {
			return solution{x: x, f: fx, iterations: iter - 1}, nil
		}

		improvement := fx - fy

		// BB1 step: sᵀs / sᵀy
		floats.SubTo(yk, trialGrad, grad)
		if sy := floats.Dot(dir, yk); sy > 0 {
			alpha = floats.Dot(dir, dir) / sy
		} else {
			alpha *= 2
		}
		alpha = math.Min(math.Max(alpha, minStep), maxStep)

		copy(x, trial)
		copy(grad, trialGrad)
		fx = fy

		if improvement < tol {
			return solution{x: x, f: fx, iterations: iter, converged: true}, nil
		}
	}

	return solution{x: x, f: fx, iterations: maxIter}, nil
}
