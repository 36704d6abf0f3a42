package contracts

import "fmt"

// AssetIndex is the stable ordered list of tickers for one run.
// Every vector and matrix in the core is indexed by it.
// ⭐ SSOT: 한 번 생성되면 모든 단계에서 동일 순서 사용
type AssetIndex []string

// NewAssetIndex builds an index, rejecting empty and duplicate tickers
func NewAssetIndex(tickers []string) (AssetIndex, error) {
	seen := make(map[string]struct{}, len(tickers))
	idx := make(AssetIndex, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			return nil, fmt.Errorf("empty ticker")
		}
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("duplicate ticker: %s", t)
		}
		seen[t] = struct{}{}
		idx = append(idx, t)
	}
	return idx, nil
}

// Len returns the number of assets
func (a AssetIndex) Len() int {
	return len(a)
}

// Position returns the column position of ticker
func (a AssetIndex) Position(ticker string) (int, bool) {
	for i, t := range a {
		if t == ticker {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether ticker is part of the index
func (a AssetIndex) Contains(ticker string) bool {
	_, ok := a.Position(ticker)
	return ok
}
