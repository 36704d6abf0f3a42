package optimizer

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/wonny/frontier/internal/contracts"
)

// penaltyWeight scales ‖x - P(x)‖² so the simplex search stays near the
// feasible set
const penaltyWeight = 1e3

// nelderMead runs gonum's derivative-free simplex search on f(P(x)) plus a
// distance penalty and returns P(x*).
func nelderMead(ctx context.Context, f objectiveFunc, x0 []float64, b contracts.Bounds, tol float64, maxIter int) (solution, error) {
	n := len(x0)
	proj := make([]float64, n)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			projectCappedSimplex(proj, x, b)
			d := floats.Distance(x, proj, 2)
			return f(proj, nil) + penaltyWeight*d*d
		},
	}

	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   tol,
			Iterations: 50 + 10*n,
		},
		Recorder: ctxRecorder{ctx: ctx},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return solution{}, ctxErr
	}
	if result == nil {
		return solution{}, fmt.Errorf("nelder-mead: %w", err)
	}

	x := make([]float64, n)
	projectCappedSimplex(x, result.X, b)

	converged := err == nil &&
		(result.Status == optimize.Success || result.Status == optimize.FunctionConvergence)

	return solution{
		x:          x,
		f:          f(x, nil),
		iterations: result.Stats.MajorIterations,
		converged:  converged,
	}, nil
}

// ctxRecorder aborts the gonum run once the context is done
type ctxRecorder struct {
	ctx context.Context
}

func (r ctxRecorder) Init() error { return r.ctx.Err() }

func (r ctxRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}
