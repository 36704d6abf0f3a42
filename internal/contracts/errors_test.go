package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsInputError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"insufficient", &InsufficientDataError{Observations: 1, Required: 2}, true},
		{"wrapped weights", fmt.Errorf("analyze: %w", &InvalidWeightsError{Reason: "x"}), true},
		{"bounds", &InvalidBoundsError{Lower: 1, Upper: 1, Assets: 2}, true},
		{"price", &InvalidPriceError{Ticker: "AAPL", Date: time.Now(), Price: -1}, true},
		{"no prices", &NoPricesError{Tickers: []string{"ZZZZ"}}, true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInputError(tt.err); got != tt.want {
				t.Errorf("IsInputError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsufficientDataError_As(t *testing.T) {
	err := fmt.Errorf("build returns: %w", &InsufficientDataError{Observations: 1, Required: 2, Reason: "common dates"})

	var target *InsufficientDataError
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match")
	}
	if target.Observations != 1 {
		t.Errorf("Observations = %d, want 1", target.Observations)
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("expected errors.Is(err, ErrInsufficientData)")
	}
}
