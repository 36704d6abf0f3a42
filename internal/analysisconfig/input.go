package analysisconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/frontier/internal/contracts"
)

// CustomPresetName is the name given to manually entered portfolios
const CustomPresetName = "Custom"

// ParseManual parses comma-separated tickers and weights such as
// "AAPL, msft" and "0.6, 0.4". Tickers are upper-cased.
// 입력 오류는 모두 InvalidWeightsError (자동 보정 없음)
func ParseManual(tickers, weights string) (*Preset, error) {
	ts := splitList(tickers)
	ws := splitList(weights)

	if len(ts) != len(ws) {
		return nil, &contracts.InvalidWeightsError{
			Reason: fmt.Sprintf("%d tickers but %d weights", len(ts), len(ws)),
		}
	}

	holdings := make([]Holding, len(ts))
	for i, raw := range ts {
		w, err := strconv.ParseFloat(ws[i], 64)
		if err != nil {
			return nil, &contracts.InvalidWeightsError{
				Ticker: strings.ToUpper(raw),
				Reason: fmt.Sprintf("cannot parse weight %q", ws[i]),
			}
		}
		holdings[i] = Holding{Ticker: raw, Weight: w}
	}

	return NewCustom(holdings)
}

// NewCustom builds the Custom preset from explicit holdings.
// Tickers are trimmed and upper-cased; duplicates, non-finite weights and
// sums other than 1 are rejected.
func NewCustom(holdings []Holding) (*Preset, error) {
	if len(holdings) == 0 {
		return nil, &contracts.InvalidWeightsError{Reason: "no tickers given"}
	}

	p := &Preset{Name: CustomPresetName, Holdings: make([]Holding, len(holdings))}
	seen := make(map[string]struct{}, len(holdings))
	total := 0.0

	for i, h := range holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			return nil, &contracts.InvalidWeightsError{Reason: "empty ticker"}
		}
		if _, dup := seen[ticker]; dup {
			return nil, &contracts.InvalidWeightsError{Ticker: ticker, Reason: "duplicate ticker"}
		}
		seen[ticker] = struct{}{}

		if math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) {
			return nil, &contracts.InvalidWeightsError{Ticker: ticker, Reason: "weight is not finite"}
		}

		p.Holdings[i] = Holding{Ticker: ticker, Weight: h.Weight}
		total += h.Weight
	}

	if math.Abs(total-1) > contracts.WeightTolerance {
		return nil, &contracts.InvalidWeightsError{Reason: fmt.Sprintf("weights sum to %g, want 1", total)}
	}

	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
