package analysis

import (
	"time"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/performance"
)

// Allocation names, in report order
const (
	AllocationOriginal      = "original"
	AllocationMaxSharpe     = "max_sharpe"
	AllocationMinVolatility = "min_volatility"
	AllocationBenchmark     = "benchmark"
)

// Labels used by renderers
var allocationLabels = map[string]string{
	AllocationOriginal:      "Original",
	AllocationMaxSharpe:     "Max Sharpe",
	AllocationMinVolatility: "Min Volatility",
	AllocationBenchmark:     "Benchmark",
}

// Allocation is one compared portfolio
type Allocation struct {
	Name         string                        `json:"name"`
	Label        string                        `json:"label"`
	Weights      contracts.WeightVector        `json:"weights"`
	Metrics      contracts.MetricsRecord       `json:"metrics"`
	Risk         contracts.RiskSummary         `json:"risk"`
	Cumulative   []performance.Point           `json:"cumulative"`
	Optimization *contracts.OptimizationResult `json:"optimization,omitempty"`
	FellBack     bool                          `json:"fell_back,omitempty"` // 미수렴 → 동일 비중 대체
}

// Report is everything a presentation layer needs for one run
// ⭐ SSOT: CLI/API/차트 모두 이 구조만 소비
type Report struct {
	RunID        string               `json:"run_id"`
	Portfolio    string               `json:"portfolio"`
	GeneratedAt  time.Time            `json:"generated_at"`
	ConfigHash   string               `json:"config_hash,omitempty"`
	Assets       contracts.AssetIndex `json:"assets"`
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	Observations int                  `json:"observations"`
	Options      Options              `json:"options"`
	Benchmark    string               `json:"benchmark,omitempty"`
	Allocations  []Allocation         `json:"allocations"`
}

// Allocation returns the named allocation
func (r *Report) Allocation(name string) (*Allocation, bool) {
	for i := range r.Allocations {
		if r.Allocations[i].Name == name {
			return &r.Allocations[i], true
		}
	}
	return nil, false
}

// Portfolios returns the allocations that carry per-asset weights
// (everything except the benchmark)
func (r *Report) Portfolios() []Allocation {
	out := make([]Allocation, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		if a.Name != AllocationBenchmark {
			out = append(out, a)
		}
	}
	return out
}

func newAllocation(name string, weights contracts.WeightVector, ev *performance.Evaluation) Allocation {
	return Allocation{
		Name:       name,
		Label:      allocationLabels[name],
		Weights:    weights,
		Metrics:    ev.Metrics,
		Risk:       ev.Risk,
		Cumulative: performance.Collect(ev.Cumulative()),
	}
}

// assemble collects the evaluated allocations into a Report
func assemble(actx *Context, portfolio string, generatedAt time.Time, allocations []Allocation) *Report {
	r := actx.Returns
	report := &Report{
		RunID:        actx.RunID,
		Portfolio:    portfolio,
		GeneratedAt:  generatedAt,
		Assets:       r.Assets,
		Start:        r.Anchor,
		End:          r.Dates[len(r.Dates)-1],
		Observations: r.Rows(),
		Options:      actx.Options,
		Allocations:  allocations,
	}
	if r.HasBenchmark() {
		report.Benchmark = r.Benchmark.Ticker
	}
	return report
}
