package contracts

import "time"

// PricePoint is a single daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the close history of one ticker, oldest first
// ⭐ SSOT: 가격 공급자(Yahoo/DB/Cache) → Return Series Builder 전달 형식
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// IsEmpty reports whether the series has no observations
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Range returns the first and last dates of the series.
// Points must be sorted.
func (s PriceSeries) Range() (time.Time, time.Time) {
	if len(s.Points) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Points[0].Date, s.Points[len(s.Points)-1].Date
}

// TruncateDay normalizes a timestamp to its UTC calendar day
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
