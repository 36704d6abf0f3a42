package analysisconfig

import (
	"fmt"
	"math"

	"github.com/wonny/frontier/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	a := cfg.Analysis

	// === Analysis ===
	if math.IsNaN(a.RiskFreeRate) || a.RiskFreeRate < -1 || a.RiskFreeRate > 1 {
		return ValidationError{"analysis.risk_free_rate", "must be in [-1, 1]"}
	}
	if a.PeriodsPerYear <= 0 {
		return ValidationError{"analysis.periods_per_year", "must be > 0"}
	}

	b := a.WeightBounds
	if b.Lower < 0 || b.Upper > 1 {
		return ValidationError{"analysis.weight_bounds", "must lie within [0, 1]"}
	}
	if b.Lower > b.Upper {
		return ValidationError{"analysis.weight_bounds", "lower must be <= upper"}
	}

	if _, err := a.StartDate(); err != nil {
		return ValidationError{"analysis.lookback_start", "must be YYYY-MM-DD"}
	}

	if _, err := a.Solver.ParsedMethod(); err != nil {
		return ValidationError{"analysis.solver.method", err.Error()}
	}
	if a.Solver.Tolerance < 0 {
		return ValidationError{"analysis.solver.tolerance", "must be >= 0"}
	}
	if a.Solver.MaxIterations < 0 {
		return ValidationError{"analysis.solver.max_iterations", "must be >= 0"}
	}

	// === Presets ===
	names := make(map[string]struct{}, len(cfg.Presets))
	for i, p := range cfg.Presets {
		field := fmt.Sprintf("presets[%d]", i)
		if p.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if _, dup := names[p.Name]; dup {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate preset %q", p.Name)}
		}
		names[p.Name] = struct{}{}

		if len(p.Holdings) == 0 {
			return ValidationError{field + ".holdings", "required"}
		}

		idx, err := contracts.NewAssetIndex(p.Tickers())
		if err != nil {
			return ValidationError{field + ".holdings", err.Error()}
		}
		if err := p.Weights().Validate(idx, b); err != nil {
			return ValidationError{field + ".holdings", err.Error()}
		}
	}

	return nil
}
