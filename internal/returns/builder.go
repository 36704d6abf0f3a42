// Package returns turns raw close histories into aligned periodic returns.
package returns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/frontier/internal/contracts"
)

// minObservations is the number of common dates needed for one return row
const minObservations = 2

// Build aligns every asset (and the optional benchmark) on the intersection
// of their calendar days and computes simple returns r_t = p_t/p_{t-1} - 1.
// ⭐ SSOT: AssetIndex는 여기서 한 번 생성되어 이후 모든 단계로 전달됨
func Build(assets []contracts.PriceSeries, benchmark *contracts.PriceSeries) (*contracts.AlignedReturns, error) {
	if len(assets) == 0 {
		return nil, &contracts.InsufficientDataError{Required: 1, Reason: "no assets"}
	}

	tickers := make([]string, len(assets))
	for i, s := range assets {
		tickers[i] = s.Ticker
	}
	idx, err := contracts.NewAssetIndex(tickers)
	if err != nil {
		return nil, fmt.Errorf("asset index: %w", err)
	}

	closes := make([]map[time.Time]float64, 0, len(assets)+1)
	for _, s := range assets {
		m, err := byDay(s)
		if err != nil {
			return nil, err
		}
		closes = append(closes, m)
	}

	var benchCloses map[time.Time]float64
	if benchmark != nil {
		benchCloses, err = byDay(*benchmark)
		if err != nil {
			return nil, err
		}
	}

	dates := intersect(closes, benchCloses)
	if len(dates) == 0 {
		return nil, &contracts.InsufficientDataError{Required: minObservations, Reason: "no common dates"}
	}
	if len(dates) < minObservations {
		return nil, &contracts.InsufficientDataError{
			Observations: len(dates),
			Required:     minObservations,
			Reason:       "too few common dates",
		}
	}

	out := &contracts.AlignedReturns{
		Assets:  idx,
		Anchor:  dates[0],
		Dates:   dates[1:],
		Columns: make([][]float64, len(closes)),
	}
	for i, m := range closes {
		out.Columns[i] = simpleReturns(m, dates)
	}
	if benchCloses != nil {
		out.Benchmark = &contracts.Column{
			Ticker:  benchmark.Ticker,
			Returns: simpleReturns(benchCloses, dates),
		}
	}

	return out, nil
}

// byDay indexes a series by UTC calendar day.
// 같은 날짜가 여러 번 나오면 마지막 값 사용
func byDay(s contracts.PriceSeries) (map[time.Time]float64, error) {
	m := make(map[time.Time]float64, len(s.Points))
	for _, p := range s.Points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return nil, &contracts.InvalidPriceError{Ticker: s.Ticker, Date: p.Date, Price: p.Close}
		}
		m[contracts.TruncateDay(p.Date)] = p.Close
	}
	return m, nil
}

// intersect returns the sorted days present in every map
func intersect(sets []map[time.Time]float64, extra map[time.Time]float64) []time.Time {
	all := sets
	if extra != nil {
		all = append(append([]map[time.Time]float64{}, sets...), extra)
	}

	// 가장 작은 집합 기준으로 교집합
	smallest := all[0]
	for _, m := range all[1:] {
		if len(m) < len(smallest) {
			smallest = m
		}
	}

	dates := make([]time.Time, 0, len(smallest))
	for d := range smallest {
		inAll := true
		for _, m := range all {
			if _, ok := m[d]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func simpleReturns(closes map[time.Time]float64, dates []time.Time) []float64 {
	out := make([]float64, len(dates)-1)
	prev := closes[dates[0]]
	for i, d := range dates[1:] {
		cur := closes[d]
		out[i] = cur/prev - 1
		prev = cur
	}
	return out
}
