// Package optimizer derives max-Sharpe and min-volatility weight vectors
// under a budget constraint and per-asset bounds.
package optimizer

import (
	"context"
	"fmt"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/estimator"
)

// Solver defaults
const (
	DefaultTolerance     = 1e-9
	DefaultMaxIterations = 1000
)

// Settings controls one optimizer run
type Settings struct {
	RiskFreeRate  float64
	Bounds        contracts.Bounds
	Method        contracts.Method
	Tolerance     float64
	MaxIterations int
}

// DefaultSettings returns long-only bounds, rf = 0 and the projected-gradient solver
func DefaultSettings() Settings {
	return Settings{
		Bounds:        contracts.DefaultBounds,
		Method:        contracts.MethodProjectedGradient,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

func (s Settings) withDefaults() Settings {
	if s.Method == "" {
		s.Method = contracts.MethodProjectedGradient
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s
}

// MaxSharpe maximizes the Sharpe ratio
func MaxSharpe(ctx context.Context, stats *estimator.Statistics, settings Settings) (*contracts.OptimizationResult, error) {
	return Optimize(ctx, stats, contracts.ObjectiveMaxSharpe, settings)
}

// MinVolatility minimizes portfolio volatility
func MinVolatility(ctx context.Context, stats *estimator.Statistics, settings Settings) (*contracts.OptimizationResult, error) {
	return Optimize(ctx, stats, contracts.ObjectiveMinVolatility, settings)
}

// Optimize runs the selected solver from equal weights.
// ObjectiveValue is the minimized value: volatility, or -Sharpe for max_sharpe.
// Non-convergence is not an error; the best weights found are returned with
// Converged=false.
// For max_sharpe, a zero-variance asset beating rf short-circuits to the
// riskless vertex, reported with the guarded Sharpe of 0.
func Optimize(ctx context.Context, stats *estimator.Statistics, objective contracts.Objective, settings Settings) (*contracts.OptimizationResult, error) {
	if stats == nil || stats.N() == 0 {
		return nil, &contracts.InsufficientDataError{Required: 1, Reason: "no assets to optimize"}
	}
	if !objective.Valid() {
		return nil, fmt.Errorf("unknown objective: %s", objective)
	}

	s := settings.withDefaults()
	n := stats.N()
	if err := s.Bounds.Feasible(n); err != nil {
		return nil, err
	}

	var f objectiveFunc
	switch objective {
	case contracts.ObjectiveMaxSharpe:
		f = negSharpeObjective(stats, s.RiskFreeRate)
	default:
		f = volatilityObjective(stats)
	}

	result := &contracts.OptimizationResult{
		Objective: objective,
		Method:    s.Method,
	}

	// 단일 자산: 항상 100%
	if n == 1 {
		w := []float64{1}
		result.Weights = contracts.WeightsFromSlice(stats.Assets, w)
		result.ObjectiveValue = f(w, nil)
		result.Converged = true
		return result, nil
	}

	if objective == contracts.ObjectiveMaxSharpe {
		if w, ok := risklessVertex(stats, s.RiskFreeRate, s.Bounds); ok {
			result.Weights = contracts.WeightsFromSlice(stats.Assets, w)
			result.ObjectiveValue = f(w, nil)
			result.Converged = true
			return result, nil
		}
	}

	x0 := contracts.EqualWeights(stats.Assets).Slice(stats.Assets)

	var (
		sol solution
		err error
	)
	switch s.Method {
	case contracts.MethodProjectedGradient:
		sol, err = projectedGradient(ctx, f, x0, s.Bounds, s.Tolerance, s.MaxIterations)
	case contracts.MethodNelderMead:
		sol, err = nelderMead(ctx, f, x0, s.Bounds, s.Tolerance, s.MaxIterations)
	default:
		return nil, fmt.Errorf("unknown solver method: %s", s.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("%s optimization: %w", objective, err)
	}

	postProcess(sol.x, s.Bounds)

	result.Weights = contracts.WeightsFromSlice(stats.Assets, sol.x)
	result.ObjectiveValue = f(sol.x, nil)
	result.Converged = sol.converged
	result.Iterations = sol.iterations
	return result, nil
}
