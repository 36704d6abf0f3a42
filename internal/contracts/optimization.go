package contracts

import "fmt"

// Objective selects what the optimizer minimizes
type Objective string

const (
	ObjectiveMaxSharpe     Objective = "max_sharpe"
	ObjectiveMinVolatility Objective = "min_volatility"
)

// Valid reports whether o is a known objective
func (o Objective) Valid() bool {
	return o == ObjectiveMaxSharpe || o == ObjectiveMinVolatility
}

// Method selects the solver
type Method string

const (
	MethodProjectedGradient Method = "projected_gradient"
	MethodNelderMead        Method = "nelder_mead"
)

// ParseMethod validates a solver name; empty means the default solver
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodProjectedGradient:
		return MethodProjectedGradient, nil
	case MethodNelderMead:
		return MethodNelderMead, nil
	default:
		return "", fmt.Errorf("unknown solver method: %s", s)
	}
}

// OptimizationResult is the outcome of one optimizer run
// ⭐ 미수렴이어도 best weights 반환 (Converged=false)
type OptimizationResult struct {
	Objective      Objective    `json:"objective"`
	Method         Method       `json:"method"`
	Weights        WeightVector `json:"weights"`
	ObjectiveValue float64      `json:"objective_value"`
	Converged      bool         `json:"converged"`
	Iterations     int          `json:"iterations"`
}
