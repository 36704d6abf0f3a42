// Package analysis runs the optimization pipeline for one portfolio and
// assembles the comparison report.
package analysis

import (
	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/estimator"
	"github.com/wonny/frontier/internal/optimizer"
)

// Options are the numeric parameters of one run
type Options struct {
	RiskFreeRate   float64          `json:"risk_free_rate"`
	PeriodsPerYear float64          `json:"periods_per_year"`
	Bounds         contracts.Bounds `json:"weight_bounds"`
	Method         contracts.Method `json:"method"`
	Tolerance      float64          `json:"tolerance"`
	MaxIterations  int              `json:"max_iterations"`

	// 미수렴 시 동일 비중으로 대체 (기본 off)
	FallbackToEqualWeight bool `json:"fallback_to_equal_weight"`
}

// DefaultOptions mirrors the embedded analysis defaults
func DefaultOptions() Options {
	return Options{
		PeriodsPerYear: estimator.DefaultPeriodsPerYear,
		Bounds:         contracts.DefaultBounds,
		Method:         contracts.MethodProjectedGradient,
		Tolerance:      optimizer.DefaultTolerance,
		MaxIterations:  optimizer.DefaultMaxIterations,
	}
}

// OptionsFromConfig converts the YAML analysis section
func OptionsFromConfig(a analysisconfig.Analysis) (Options, error) {
	method, err := a.Solver.ParsedMethod()
	if err != nil {
		return Options{}, err
	}
	return Options{
		RiskFreeRate:          a.RiskFreeRate,
		PeriodsPerYear:        a.PeriodsPerYear,
		Bounds:                a.WeightBounds,
		Method:                method,
		Tolerance:             a.Solver.Tolerance,
		MaxIterations:         a.Solver.MaxIterations,
		FallbackToEqualWeight: a.FallbackToEqualWeight,
	}, nil
}

// Settings returns the optimizer settings for these options
func (o Options) Settings() optimizer.Settings {
	return optimizer.Settings{
		RiskFreeRate:  o.RiskFreeRate,
		Bounds:        o.Bounds,
		Method:        o.Method,
		Tolerance:     o.Tolerance,
		MaxIterations: o.MaxIterations,
	}
}
