package contracts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for errors.Is matching.
// ⭐ SSOT: 입력/데이터 결함은 모두 이 값들로 분류됨
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidWeights   = errors.New("invalid weights")
	ErrInvalidBounds    = errors.New("invalid weight bounds")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrNoPrices         = errors.New("no prices found")
)

// InsufficientDataError is returned when too few aligned observations exist
// to compute returns or statistics.
type InsufficientDataError struct {
	Observations int
	Required     int
	Reason       string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient data: %s (have %d, need %d)", e.Reason, e.Observations, e.Required)
	}
	return fmt.Sprintf("insufficient data: have %d observations, need %d", e.Observations, e.Required)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// InvalidWeightsError describes why a user-supplied weight vector was rejected.
// 자동 보정하지 않음
type InvalidWeightsError struct {
	Ticker string // 관련 종목 (없으면 빈 문자열)
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("invalid weights: %s: %s", e.Ticker, e.Reason)
	}
	return "invalid weights: " + e.Reason
}

func (e *InvalidWeightsError) Unwrap() error { return ErrInvalidWeights }

// InvalidBoundsError is returned when no weight vector can satisfy both the
// budget constraint and the per-asset bounds.
type InvalidBoundsError struct {
	Lower  float64
	Upper  float64
	Assets int
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid weight bounds [%g, %g] for %d assets", e.Lower, e.Upper, e.Assets)
}

func (e *InvalidBoundsError) Unwrap() error { return ErrInvalidBounds }

// InvalidPriceError reports a non-positive or non-finite close.
type InvalidPriceError struct {
	Ticker string
	Date   time.Time
	Price  float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price for %s on %s: %v", e.Ticker, e.Date.Format("2006-01-02"), e.Price)
}

func (e *InvalidPriceError) Unwrap() error { return ErrInvalidPrice }

// NoPricesError lists tickers for which the provider returned nothing usable
type NoPricesError struct {
	Tickers []string
}

func (e *NoPricesError) Error() string {
	return "no prices found for these tickers: " + strings.Join(e.Tickers, ", ")
}

func (e *NoPricesError) Unwrap() error { return ErrNoPrices }

// IsInputError reports whether err is caused by caller-supplied data
// rather than an internal failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidWeights) ||
		errors.Is(err, ErrInvalidBounds) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrNoPrices)
}
