package pricedata

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/pkg/logger"
	"github.com/wonny/frontier/pkg/redis"
)

type fakeFetcher struct {
	calls   atomic.Int32
	delay   time.Duration
	missing map[string]bool
	err     error
}

func (f *fakeFetcher) FetchHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return contracts.PriceSeries{}, f.err
	}
	if f.missing[ticker] {
		return contracts.PriceSeries{}, &contracts.NoPricesError{Tickers: []string{ticker}}
	}
	s := contracts.PriceSeries{Ticker: ticker}
	for dt, v := from, 100.0; !dt.After(to); dt, v = dt.AddDate(0, 0, 1), v+1 {
		s.Points = append(s.Points, contracts.PricePoint{Date: dt, Close: v})
	}
	return s, nil
}

type memStore struct {
	mu      sync.Mutex
	windows map[string][2]time.Time
	data    map[string]contracts.PriceSeries
	saves   int
}

func newMemStore() *memStore {
	return &memStore{windows: map[string][2]time.Time{}, data: map[string]contracts.PriceSeries{}}
}

func (m *memStore) Window(_ context.Context, ticker string) (time.Time, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[ticker]
	return w[0], w[1], ok, nil
}

func (m *memStore) History(_ context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := contracts.PriceSeries{Ticker: ticker}
	for _, p := range m.data[ticker].Points {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out.Points = append(out.Points, p)
		}
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, s contracts.PriceSeries, from, to time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.windows[s.Ticker] = [2]time.Time{from, to}
	m.data[s.Ticker] = s
	return nil
}

func newCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewCache(redis.Wrap(rdb), "frontier"), mr
}

func fixedNow(p *CachedProvider) {
	p.now = func() time.Time { return d(2025, 1, 1) }
}

func TestCachedProvider_SourceOnly(t *testing.T) {
	src := &fakeFetcher{}
	p := NewCachedProvider(src, nil, nil, 0, logger.Nop())

	s, err := p.History(context.Background(), "AAPL", d(2024, 1, 1), d(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCachedProvider_CacheHit(t *testing.T) {
	src := &fakeFetcher{}
	cache, mr := newCache(t)
	p := NewCachedProvider(src, nil, cache, time.Hour, logger.Nop())
	fixedNow(p)

	ctx := context.Background()
	first, err := p.History(ctx, "AAPL", d(2024, 1, 1), d(2024, 1, 5))
	require.NoError(t, err)
	second, err := p.History(ctx, "AAPL", d(2024, 1, 1), d(2024, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load(), "second call served from cache")
	assert.Equal(t, first.Len(), second.Len())
	assert.True(t, first.Points[0].Date.Equal(second.Points[0].Date))

	key := "frontier:cache:" + redis.PriceHistoryKey("AAPL", "2024-01-01", "2024-01-05")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestCachedProvider_OpenWindowUsesIntradayTTL(t *testing.T) {
	src := &fakeFetcher{}
	cache, mr := newCache(t)
	p := NewCachedProvider(src, nil, cache, 12*time.Hour, logger.Nop())
	fixedNow(p)

	_, err := p.History(context.Background(), "AAPL", d(2024, 12, 28), d(2025, 1, 1))
	require.NoError(t, err)

	key := "frontier:cache:" + redis.PriceHistoryKey("AAPL", "2024-12-28", "2025-01-01")
	assert.Equal(t, redis.TTLIntraday, mr.TTL(key))
}

func TestCachedProvider_StoreWriteBackAndHit(t *testing.T) {
	src := &fakeFetcher{}
	store := newMemStore()
	p := NewCachedProvider(src, store, nil, 0, logger.Nop())
	fixedNow(p)

	ctx := context.Background()
	_, err := p.History(ctx, "MSFT", d(2024, 1, 1), d(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	// 저장된 구간 안쪽 요청은 store에서
	s, err := p.History(ctx, "MSFT", d(2024, 1, 3), d(2024, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, int32(1), src.calls.Load())

	// 구간 밖은 다시 upstream
	_, err = p.History(ctx, "MSFT", d(2024, 1, 3), d(2024, 1, 20))
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedProvider_StoreSkipsUnsettledDay(t *testing.T) {
	src := &fakeFetcher{}
	store := newMemStore()
	p := NewCachedProvider(src, store, nil, 0, logger.Nop())
	fixedNow(p)

	_, err := p.History(context.Background(), "MSFT", d(2024, 12, 29), d(2025, 1, 1))
	require.NoError(t, err)

	from, to, ok, _ := store.Window(context.Background(), "MSFT")
	require.True(t, ok)
	assert.Equal(t, d(2024, 12, 29), from)
	assert.Equal(t, d(2024, 12, 31), to)
	assert.Equal(t, 3, store.data["MSFT"].Len())
}

func TestCachedProvider_Singleflight(t *testing.T) {
	src := &fakeFetcher{delay: 50 * time.Millisecond}
	p := NewCachedProvider(src, nil, nil, 0, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.History(context.Background(), "GOOGL", d(2024, 1, 1), d(2024, 1, 5))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, src.calls.Load(), int32(8))
}

func TestCachedProvider_InvertedWindow(t *testing.T) {
	p := NewCachedProvider(&fakeFetcher{}, nil, nil, 0, logger.Nop())
	_, err := p.History(context.Background(), "AAPL", d(2024, 2, 1), d(2024, 1, 1))
	assert.Error(t, err)
}

func TestFetchAll(t *testing.T) {
	p := NewCachedProvider(&fakeFetcher{}, nil, nil, 0, logger.Nop())

	tickers := []string{"AAPL", "MSFT", "GOOGL", "AMZN", "^GSPC"}
	out, err := FetchAll(context.Background(), p, tickers, d(2024, 1, 1), d(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, out, len(tickers))
	for i, s := range out {
		assert.Equal(t, tickers[i], s.Ticker)
		assert.Equal(t, 3, s.Len())
	}
}

func TestFetchAll_CollectsMissing(t *testing.T) {
	src := &fakeFetcher{missing: map[string]bool{"ZZZZ": true, "QQQQ": true}}
	p := NewCachedProvider(src, nil, nil, 0, logger.Nop())

	_, err := FetchAll(context.Background(), p, []string{"AAPL", "ZZZZ", "MSFT", "QQQQ"}, d(2024, 1, 1), d(2024, 1, 3))
	require.Error(t, err)

	var npe *contracts.NoPricesError
	require.True(t, errors.As(err, &npe))
	got := append([]string(nil), npe.Tickers...)
	sort.Strings(got)
	assert.Equal(t, []string{"QQQQ", "ZZZZ"}, got)
	assert.Equal(t, "no prices found for these tickers: ZZZZ, QQQQ", err.Error())
}

func TestFetchAll_UpstreamError(t *testing.T) {
	p := NewCachedProvider(&fakeFetcher{err: assert.AnError}, nil, nil, 0, logger.Nop())

	_, err := FetchAll(context.Background(), p, []string{"AAPL"}, d(2024, 1, 1), d(2024, 1, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, errors.Is(err, contracts.ErrNoPrices))
}
