package pricedata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/pkg/logger"
	"github.com/wonny/frontier/pkg/redis"
)

// Provider supplies daily close history for one ticker
type Provider interface {
	History(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error)
}

// Fetcher is the upstream price source (yahoo.Client)
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error)
}

// Store persists fetched history (Repository)
type Store interface {
	Window(ctx context.Context, ticker string) (from, to time.Time, ok bool, err error)
	History(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error)
	Save(ctx context.Context, series contracts.PriceSeries, from, to time.Time) error
}

// CachedProvider layers Redis cache → Postgres store → upstream fetch.
// Store and cache are optional; failures there are logged and skipped.
// ⭐ SSOT: 가격 조회 경로는 여기서만 결정
type CachedProvider struct {
	source Fetcher
	store  Store
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewCachedProvider creates a provider. store and cache may be nil.
func NewCachedProvider(source Fetcher, store Store, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedProvider{
		source: source,
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// History returns closes for ticker in [from, to].
// Concurrent calls for the same ticker and window share one load.
func (p *CachedProvider) History(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	from = contracts.TruncateDay(from)
	to = contracts.TruncateDay(to)
	if to.Before(from) {
		return contracts.PriceSeries{}, fmt.Errorf("price window %s: to %s before from %s",
			ticker, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	key := redis.PriceHistoryKey(ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.load(ctx, key, ticker, from, to)
	})
	if err != nil {
		return contracts.PriceSeries{}, err
	}
	return v.(contracts.PriceSeries), nil
}

func (p *CachedProvider) load(ctx context.Context, key, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	log := p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	})

	// 1. Redis
	if p.cache != nil {
		var cached contracts.PriceSeries
		found, err := p.cache.Get(ctx, key, &cached)
		if err != nil {
			log.WithError(err).Warn("Price cache read failed")
		} else if found {
			log.Debug("Price cache hit")
			return cached, nil
		}
	}

	// 2. Postgres
	if p.store != nil {
		series, ok, err := p.fromStore(ctx, ticker, from, to)
		if err != nil {
			log.WithError(err).Warn("Price store read failed")
		} else if ok {
			log.WithField("count", series.Len()).Debug("Price store hit")
			p.writeCache(ctx, log, key, series, to)
			return series, nil
		}
	}

	// 3. Upstream
	series, err := p.source.FetchHistory(ctx, ticker, from, to)
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	if p.store != nil {
		// 당일 종가는 확정 전이므로 전일까지만 저장 구간으로 기록
		settled := to
		today := contracts.TruncateDay(p.now())
		if !settled.Before(today) {
			settled = today.AddDate(0, 0, -1)
		}
		if !settled.Before(from) {
			if err := p.store.Save(ctx, settledOnly(series, settled), from, settled); err != nil {
				log.WithError(err).Warn("Price store write failed")
			}
		}
	}
	p.writeCache(ctx, log, key, series, to)

	log.WithField("count", series.Len()).Info("Fetched price history")
	return series, nil
}

func (p *CachedProvider) fromStore(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, bool, error) {
	wFrom, wTo, ok, err := p.store.Window(ctx, ticker)
	if err != nil || !ok {
		return contracts.PriceSeries{}, false, err
	}
	if wFrom.After(from) || wTo.Before(to) {
		return contracts.PriceSeries{}, false, nil
	}

	series, err := p.store.History(ctx, ticker, from, to)
	if err != nil {
		return contracts.PriceSeries{}, false, err
	}
	return series, !series.IsEmpty(), nil
}

func (p *CachedProvider) writeCache(ctx context.Context, log *logger.Logger, key string, series contracts.PriceSeries, to time.Time) {
	if p.cache == nil {
		return
	}
	ttl := p.ttl
	if !to.Before(contracts.TruncateDay(p.now())) {
		ttl = redis.TTLIntraday
	}
	if err := p.cache.Set(ctx, key, series, ttl); err != nil {
		log.WithError(err).Warn("Price cache write failed")
	}
}

// settledOnly drops points after the last settled day
func settledOnly(s contracts.PriceSeries, last time.Time) contracts.PriceSeries {
	out := contracts.PriceSeries{Ticker: s.Ticker}
	for _, pt := range s.Points {
		if pt.Date.After(last) {
			break
		}
		out.Points = append(out.Points, pt)
	}
	return out
}

// FetchAll loads every ticker concurrently, preserving input order.
// Tickers without usable prices are collected into one *contracts.NoPricesError.
func FetchAll(ctx context.Context, p Provider, tickers []string, from, to time.Time) ([]contracts.PriceSeries, error) {
	out := make([]contracts.PriceSeries, len(tickers))
	missing := make([]bool, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, ticker := range tickers {
		g.Go(func() error {
			s, err := p.History(gctx, ticker, from, to)
			if errors.Is(err, contracts.ErrNoPrices) {
				missing[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("history %s: %w", ticker, err)
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var noPrices []string
	for i, m := range missing {
		if m {
			noPrices = append(noPrices, tickers[i])
		}
	}
	if len(noPrices) > 0 {
		return nil, &contracts.NoPricesError{Tickers: noPrices}
	}
	return out, nil
}
