package contracts

import (
	"errors"
	"math"
	"testing"
)

func TestBounds_Feasible(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		n       int
		wantErr bool
	}{
		{"default bounds", DefaultBounds, 4, false},
		{"single asset", DefaultBounds, 1, false},
		{"lower too high", Bounds{Lower: 0.3, Upper: 1}, 4, true},
		{"upper too low", Bounds{Lower: 0, Upper: 0.2}, 4, true},
		{"inverted", Bounds{Lower: 0.5, Upper: 0.1}, 2, true},
		{"exactly tight", Bounds{Lower: 0.25, Upper: 0.25}, 4, false},
		{"no assets", DefaultBounds, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Feasible(tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Feasible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("expected ErrInvalidBounds, got %v", err)
			}
		})
	}
}

func TestWeightVector_Validate(t *testing.T) {
	idx := AssetIndex{"AAPL", "MSFT", "GOOGL"}

	tests := []struct {
		name       string
		weights    WeightVector
		wantTicker string
		wantErr    bool
	}{
		{"valid", WeightVector{"AAPL": 0.3, "MSFT": 0.4, "GOOGL": 0.3}, "", false},
		{"within tolerance", WeightVector{"AAPL": 0.3, "MSFT": 0.4, "GOOGL": 0.3000005}, "", false},
		{"sum too low", WeightVector{"AAPL": 0.3, "MSFT": 0.4, "GOOGL": 0.2}, "", true},
		{"missing asset", WeightVector{"AAPL": 0.5, "MSFT": 0.5}, "GOOGL", true},
		{"unknown asset", WeightVector{"AAPL": 0.3, "MSFT": 0.4, "GOOGL": 0.2, "TSLA": 0.1}, "TSLA", true},
		{"negative weight", WeightVector{"AAPL": -0.1, "MSFT": 0.6, "GOOGL": 0.5}, "AAPL", true},
		{"nan weight", WeightVector{"AAPL": math.NaN(), "MSFT": 0.5, "GOOGL": 0.5}, "AAPL", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate(idx, DefaultBounds)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}

			var werr *InvalidWeightsError
			if !errors.As(err, &werr) {
				t.Fatalf("expected *InvalidWeightsError, got %T", err)
			}
			if werr.Ticker != tt.wantTicker {
				t.Errorf("Ticker = %q, want %q", werr.Ticker, tt.wantTicker)
			}
			if !errors.Is(err, ErrInvalidWeights) {
				t.Error("expected errors.Is(err, ErrInvalidWeights)")
			}
		})
	}
}

func TestWeightVector_Slice(t *testing.T) {
	idx := AssetIndex{"B", "A"}
	w := WeightVector{"A": 0.7, "B": 0.3}

	got := w.Slice(idx)
	if got[0] != 0.3 || got[1] != 0.7 {
		t.Errorf("Slice() = %v, want [0.3 0.7]", got)
	}

	back := WeightsFromSlice(idx, got)
	if back["A"] != 0.7 || back["B"] != 0.3 {
		t.Errorf("WeightsFromSlice() = %v", back)
	}
}

func TestEqualWeights(t *testing.T) {
	w := EqualWeights(AssetIndex{"SPY", "EFA", "EEM", "AGG"})
	if len(w) != 4 {
		t.Fatalf("len = %d, want 4", len(w))
	}
	if math.Abs(w.Sum()-1) > 1e-12 {
		t.Errorf("Sum() = %v, want 1", w.Sum())
	}
	if w["EEM"] != 0.25 {
		t.Errorf("EEM = %v, want 0.25", w["EEM"])
	}
}

func TestNewAssetIndex(t *testing.T) {
	idx, err := NewAssetIndex([]string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos, ok := idx.Position("MSFT"); !ok || pos != 1 {
		t.Errorf("Position(MSFT) = %d, %v", pos, ok)
	}

	if _, err := NewAssetIndex([]string{"AAPL", "AAPL"}); err == nil {
		t.Error("expected duplicate ticker error")
	}
	if _, err := NewAssetIndex([]string{""}); err == nil {
		t.Error("expected empty ticker error")
	}
}
