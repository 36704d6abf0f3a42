package pricedata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/frontier/internal/contracts"
)

// FileProvider serves closes from a wide CSV file for offline runs.
//
//	Date,AAPL,MSFT,^GSPC
//	2024-01-02,185.64,370.87,4742.83
//
// Empty cells are missing observations.
type FileProvider struct {
	series map[string]contracts.PriceSeries
}

// OpenFile loads a price CSV from path
func OpenFile(path string) (*FileProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

// LoadCSV parses a wide price CSV
func LoadCSV(r io.Reader) (*FileProvider, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read price header: %w", err)
	}
	if len(header) < 2 {
		return nil, errors.New("price file needs a date column and at least one ticker")
	}

	tickers := make([]string, len(header)-1)
	for i, h := range header[1:] {
		tickers[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	byTicker := make(map[string]map[time.Time]float64, len(tickers))
	for _, t := range tickers {
		byTicker[t] = make(map[time.Time]float64)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read price file line %d: %w", line, err)
		}

		date, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("price file line %d: %w", line, err)
		}

		for i, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("price file line %d, %s: %w", line, tickers[i], err)
			}
			byTicker[tickers[i]][date] = v
		}
	}

	fp := &FileProvider{series: make(map[string]contracts.PriceSeries, len(tickers))}
	for t, closes := range byTicker {
		s := contracts.PriceSeries{Ticker: t, Points: make([]contracts.PricePoint, 0, len(closes))}
		for d, v := range closes {
			s.Points = append(s.Points, contracts.PricePoint{Date: d, Close: v})
		}
		sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
		fp.series[t] = s
	}
	return fp, nil
}

// Tickers lists the columns in the file, sorted
func (p *FileProvider) Tickers() []string {
	out := make([]string, 0, len(p.series))
	for t := range p.series {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// History returns the closes for ticker within [from, to].
// Unknown tickers and unusable columns yield *contracts.NoPricesError.
func (p *FileProvider) History(_ context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	s, ok := p.series[strings.ToUpper(ticker)]
	if !ok {
		return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
	}

	from = contracts.TruncateDay(from)
	to = contracts.TruncateDay(to)

	out := contracts.PriceSeries{Ticker: ticker}
	distinct := false
	for _, pt := range s.Points {
		if pt.Date.Before(from) || pt.Date.After(to) {
			continue
		}
		if len(out.Points) > 0 && pt.Close != out.Points[0].Close {
			distinct = true
		}
		out.Points = append(out.Points, pt)
	}
	if !distinct {
		return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// yfinance 내보내기는 시간대가 붙는 경우가 있음
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
