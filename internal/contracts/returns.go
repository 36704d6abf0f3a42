package contracts

import (
	"fmt"
	"time"
)

// AlignedReturns holds periodic simple returns on a shared calendar.
// ⭐ SSOT: Return Series Builder → Estimator/Evaluator 전달 형식
//
// Anchor is the first aligned date. It carries no return and serves as the
// zero point of every cumulative series. Dates[t] is the date of row t.
type AlignedReturns struct {
	Assets    AssetIndex  `json:"assets"`
	Anchor    time.Time   `json:"anchor"`
	Dates     []time.Time `json:"dates"`
	Columns   [][]float64 `json:"columns"` // [asset][row]
	Benchmark *Column     `json:"benchmark,omitempty"`
}

// Column is a single named return column
type Column struct {
	Ticker  string    `json:"ticker"`
	Returns []float64 `json:"returns"`
}

// Rows returns the number of return observations
func (r *AlignedReturns) Rows() int {
	return len(r.Dates)
}

// HasBenchmark reports whether a benchmark column is present
func (r *AlignedReturns) HasBenchmark() bool {
	return r.Benchmark != nil && len(r.Benchmark.Returns) > 0
}

// Column returns the return column of ticker
func (r *AlignedReturns) Column(ticker string) ([]float64, bool) {
	pos, ok := r.Assets.Position(ticker)
	if !ok {
		return nil, false
	}
	return r.Columns[pos], true
}

// Validate checks the shape invariant: every column matches the index length
func (r *AlignedReturns) Validate() error {
	if len(r.Columns) != r.Assets.Len() {
		return fmt.Errorf("column count %d does not match asset count %d", len(r.Columns), r.Assets.Len())
	}
	for i, col := range r.Columns {
		if len(col) != len(r.Dates) {
			return fmt.Errorf("column %s has %d rows, index has %d", r.Assets[i], len(col), len(r.Dates))
		}
	}
	if r.Benchmark != nil && len(r.Benchmark.Returns) != len(r.Dates) {
		return fmt.Errorf("benchmark %s has %d rows, index has %d", r.Benchmark.Ticker, len(r.Benchmark.Returns), len(r.Dates))
	}
	for i := 1; i < len(r.Dates); i++ {
		if !r.Dates[i].After(r.Dates[i-1]) {
			return fmt.Errorf("dates not strictly increasing at row %d", i)
		}
	}
	return nil
}
