package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/optimizer"
	"github.com/wonny/frontier/internal/performance"
	"github.com/wonny/frontier/internal/returns"
	"github.com/wonny/frontier/pkg/logger"
)

// Input is everything one run needs. No I/O happens past this point.
type Input struct {
	Portfolio string
	Assets    []contracts.PriceSeries
	Benchmark *contracts.PriceSeries // nil = 벤치마크 없음
	Weights   contracts.WeightVector
	Options   Options
}

// Runner executes the pipeline:
// prices → returns → statistics → optimizer ×2 → evaluator → report
type Runner struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{logger: log, now: time.Now}
}

// Run executes one analysis
func (r *Runner) Run(ctx context.Context, in Input) (*Report, error) {
	started := r.now()

	aligned, err := returns.Build(in.Assets, in.Benchmark)
	if err != nil {
		return nil, fmt.Errorf("build returns: %w", err)
	}

	actx, err := NewContext(aligned, in.Weights, in.Options)
	if err != nil {
		return nil, err
	}

	log := r.logger.WithRunID(actx.RunID)
	log.WithFields(map[string]interface{}{
		"portfolio":    in.Portfolio,
		"assets":       aligned.Assets.Len(),
		"observations": aligned.Rows(),
		"method":       in.Options.Method,
	}).Info("Analysis started")

	maxSharpe, minVol, err := r.optimize(ctx, actx, log)
	if err != nil {
		return nil, err
	}

	ev := performance.NewEvaluator(actx.Options.PeriodsPerYear, actx.Options.RiskFreeRate)

	allocations := make([]Allocation, 0, 4)

	original, err := ev.Evaluate(aligned, actx.Original)
	if err != nil {
		return nil, fmt.Errorf("evaluate original: %w", err)
	}
	allocations = append(allocations, newAllocation(AllocationOriginal, actx.Original, original))

	for _, opt := range []struct {
		name   string
		result *contracts.OptimizationResult
	}{
		{AllocationMaxSharpe, maxSharpe},
		{AllocationMinVolatility, minVol},
	} {
		weights, fellBack := r.acceptWeights(actx, opt.result, log)
		e, err := ev.Evaluate(aligned, weights)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", opt.name, err)
		}
		a := newAllocation(opt.name, weights, e)
		a.Optimization = opt.result
		a.FellBack = fellBack
		allocations = append(allocations, a)
	}

	if aligned.HasBenchmark() {
		bench, err := ev.EvaluateBenchmark(aligned)
		if err != nil {
			return nil, fmt.Errorf("evaluate benchmark: %w", err)
		}
		weights := contracts.WeightVector{aligned.Benchmark.Ticker: 1}
		allocations = append(allocations, newAllocation(AllocationBenchmark, weights, bench))
	}

	report := assemble(actx, in.Portfolio, started, allocations)

	log.WithFields(map[string]interface{}{
		"duration_ms": time.Since(started).Milliseconds(),
		"allocations": len(allocations),
	}).Info("Analysis completed")

	return report, nil
}

// optimize runs both objectives concurrently, each on its own statistics copy
func (r *Runner) optimize(ctx context.Context, actx *Context, log *logger.Logger) (*contracts.OptimizationResult, *contracts.OptimizationResult, error) {
	settings := actx.Options.Settings()

	var maxSharpe, minVol *contracts.OptimizationResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := optimizer.MaxSharpe(gctx, actx.Stats.Clone(), settings)
		if err != nil {
			return err
		}
		maxSharpe = res
		return nil
	})

	g.Go(func() error {
		res, err := optimizer.MinVolatility(gctx, actx.Stats.Clone(), settings)
		if err != nil {
			return err
		}
		minVol = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("optimize: %w", err)
	}

	for _, res := range []*contracts.OptimizationResult{maxSharpe, minVol} {
		log.WithFields(map[string]interface{}{
			"objective":  res.Objective,
			"iterations": res.Iterations,
			"converged":  res.Converged,
			"value":      res.ObjectiveValue,
		}).Debug("Optimization finished")
	}

	return maxSharpe, minVol, nil
}

// acceptWeights returns the optimizer weights, or equal weights when the
// run did not converge and the caller opted in to the fallback
func (r *Runner) acceptWeights(actx *Context, res *contracts.OptimizationResult, log *logger.Logger) (contracts.WeightVector, bool) {
	if res.Converged {
		return res.Weights, false
	}

	if !actx.Options.FallbackToEqualWeight {
		log.WithField("objective", res.Objective).Warn("Optimizer did not converge, reporting best weights found")
		return res.Weights, false
	}

	log.WithField("objective", res.Objective).Warn("Optimizer did not converge, falling back to equal weights")
	return contracts.EqualWeights(actx.Stats.Assets), true
}
