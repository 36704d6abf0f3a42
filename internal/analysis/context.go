package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/estimator"
)

// Context is the immutable state of one run, built once and threaded
// through every stage. Nothing in it is mutated after NewContext returns.
type Context struct {
	RunID    string
	Returns  *contracts.AlignedReturns
	Stats    *estimator.Statistics
	Original contracts.WeightVector
	Options  Options
}

// NewContext validates the original weights against the aligned asset index
// and estimates the statistics
func NewContext(r *contracts.AlignedReturns, original contracts.WeightVector, opts Options) (*Context, error) {
	if err := original.Validate(r.Assets, opts.Bounds); err != nil {
		return nil, err
	}

	stats, err := estimator.Estimate(r, opts.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("estimate statistics: %w", err)
	}

	weights := make(contracts.WeightVector, len(original))
	for t, w := range original {
		weights[t] = w
	}

	return &Context{
		RunID:    uuid.New().String(),
		Returns:  r,
		Stats:    stats,
		Original: weights,
		Options:  opts,
	}, nil
}
