// Package analysisconfig loads analysis parameters and portfolio presets.
package analysisconfig

import (
	"fmt"
	"time"

	"github.com/wonny/frontier/internal/contracts"
)

// DateLayout is the format of lookback dates
const DateLayout = "2006-01-02"

// Config is the root of the analysis YAML file
// ⭐ SSOT: 분석 파라미터 + 프리셋은 여기서만 정의
type Config struct {
	Analysis Analysis `yaml:"analysis" json:"analysis"`
	Presets  []Preset `yaml:"presets" json:"presets"`
}

// Analysis holds the numeric parameters of one run
type Analysis struct {
	RiskFreeRate          float64          `yaml:"risk_free_rate" json:"risk_free_rate"`
	PeriodsPerYear        float64          `yaml:"periods_per_year" json:"periods_per_year"`
	WeightBounds          contracts.Bounds `yaml:"weight_bounds" json:"weight_bounds"`
	Benchmark             string           `yaml:"benchmark" json:"benchmark"`           // 빈 문자열 = 벤치마크 없음
	LookbackStart         string           `yaml:"lookback_start" json:"lookback_start"` // YYYY-MM-DD
	Solver                Solver           `yaml:"solver" json:"solver"`
	FallbackToEqualWeight bool             `yaml:"fallback_to_equal_weight" json:"fallback_to_equal_weight"`
}

// Solver selects and tunes the optimizer
type Solver struct {
	Method        string  `yaml:"method" json:"method"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
}

// Preset is a named sample portfolio
type Preset struct {
	Name     string    `yaml:"name" json:"name"`
	Holdings []Holding `yaml:"holdings" json:"holdings"`
}

// Holding is one ticker/weight pair, kept in declaration order
type Holding struct {
	Ticker string  `yaml:"ticker" json:"ticker"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// StartDate parses LookbackStart
func (a Analysis) StartDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, a.LookbackStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("lookback_start: %w", err)
	}
	return t, nil
}

// ParsedMethod returns the validated solver method
func (s Solver) ParsedMethod() (contracts.Method, error) {
	return contracts.ParseMethod(s.Method)
}

// Preset finds a preset by name
func (c *Config) Preset(name string) (*Preset, bool) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], true
		}
	}
	return nil, false
}

// PresetNames returns preset names in file order
func (c *Config) PresetNames() []string {
	names := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		names[i] = p.Name
	}
	return names
}

// Tickers returns the holding tickers in order
func (p Preset) Tickers() []string {
	out := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Ticker
	}
	return out
}

// Weights returns the holdings as a weight vector
func (p Preset) Weights() contracts.WeightVector {
	w := make(contracts.WeightVector, len(p.Holdings))
	for _, h := range p.Holdings {
		w[h.Ticker] = h.Weight
	}
	return w
}

// AllTickers returns every distinct preset ticker plus the benchmark,
// in first-seen order. Used for cache warm-up.
func (c *Config) AllTickers() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, p := range c.Presets {
		for _, h := range p.Holdings {
			add(h.Ticker)
		}
	}
	add(c.Analysis.Benchmark)
	return out
}
