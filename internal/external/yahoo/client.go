package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/pkg/httputil"
	"github.com/wonny/frontier/pkg/logger"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo 가격 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
// Empty baseURL uses DefaultBaseURL.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// chartResponse mirrors the subset of /v8/finance/chart we read
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) Error() string {
	return fmt.Sprintf("yahoo: %s: %s", e.Code, e.Description)
}

// FetchHistory fetches daily closes for ticker in [from, to].
// Adjusted closes are used when the response carries them.
// Tickers with no usable or only constant closes yield *contracts.NoPricesError.
func (c *Client) FetchHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	from = contracts.TruncateDay(from)
	to = contracts.TruncateDay(to)

	// period2는 배타적 경계이므로 to 당일 바를 포함하려면 다음날 0시
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
		}
		return contracts.PriceSeries{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
		}
		return contracts.PriceSeries{}, fmt.Errorf("fetch %s: %w", ticker, resp.Chart.Error)
	}

	series := within(parseChart(ticker, resp), from, to)
	if !usable(series) {
		return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  series.Len(),
	}).Debug("Fetched prices")

	return series, nil
}

// parseChart converts the chart payload into a sorted series.
// null closes are dropped; duplicate days keep the last value.
func parseChart(ticker string, resp chartResponse) contracts.PriceSeries {
	series := contracts.PriceSeries{Ticker: ticker}
	if len(resp.Chart.Result) == 0 {
		return series
	}
	r := resp.Chart.Result[0]

	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	byDay := make(map[time.Time]float64, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		v := *closes[i]
		if math.IsNaN(v) {
			continue
		}
		// 거래소 현지 날짜 기준
		day := contracts.TruncateDay(time.Unix(ts+r.Meta.GMTOffset, 0))
		byDay[day] = v
	}

	series.Points = make([]contracts.PricePoint, 0, len(byDay))
	for d, v := range byDay {
		series.Points = append(series.Points, contracts.PricePoint{Date: d, Close: v})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series
}

// within keeps the points dated in [from, to]
func within(s contracts.PriceSeries, from, to time.Time) contracts.PriceSeries {
	out := contracts.PriceSeries{Ticker: s.Ticker}
	for _, p := range s.Points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// usable reports whether the series has at least two distinct closes
func usable(s contracts.PriceSeries) bool {
	if s.Len() < 2 {
		return false
	}
	first := s.Points[0].Close
	for _, p := range s.Points[1:] {
		if p.Close != first {
			return true
		}
	}
	return false
}
