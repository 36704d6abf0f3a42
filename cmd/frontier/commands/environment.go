package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/external/yahoo"
	"github.com/wonny/frontier/internal/pricedata"
	"github.com/wonny/frontier/pkg/config"
	"github.com/wonny/frontier/pkg/database"
	"github.com/wonny/frontier/pkg/httputil"
	"github.com/wonny/frontier/pkg/logger"
	"github.com/wonny/frontier/pkg/redis"
)

// environment is the wiring shared by analyze, serve and warmup
type environment struct {
	cfg      *config.Config
	log      *logger.Logger
	analysis *analysisconfig.Config

	db    *database.DB
	redis *redis.Client
}

// loadEnvironment reads .env/ENV settings and the analysis YAML.
// Interactive commands log to stderr so stdout stays clean.
func loadEnvironment(interactive bool) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if analysisFile != "" {
		cfg.AnalysisFile = analysisFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	var log *logger.Logger
	if interactive {
		log = logger.NewWithWriter(os.Stderr, cfg.Env)
		if verbose {
			logger.SetLevel("debug")
		} else {
			logger.SetLevel("warn")
		}
	} else {
		log = logger.New(cfg)
	}

	acfg, _, err := analysisconfig.LoadOrDefault(cfg.AnalysisFile)
	if err != nil {
		return nil, fmt.Errorf("load analysis config: %w", err)
	}

	return &environment{cfg: cfg, log: log, analysis: acfg}, nil
}

// priceProvider builds Yahoo → (Postgres) → (Redis) with whatever
// backends are enabled. Call Close when done.
func (e *environment) priceProvider(ctx context.Context) (*pricedata.CachedProvider, error) {
	var store pricedata.Store

	db, err := database.New(ctx, e.cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		e.log.Debug("Price store disabled")
	case err != nil:
		return nil, fmt.Errorf("connect to price store: %w", err)
	default:
		repo := pricedata.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		e.db = db
		store = repo
		e.log.Info("Connected to price store")
	}

	rc, err := redis.New(ctx, e.cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.redis = rc

	// Redis가 있으면 프로세스 간 공유 쿼터, 없으면 로컬 토큰 버킷
	var limiter httputil.Limiter = httputil.NewRateLimiter(e.cfg)
	var cache *redis.Cache
	if rc.Enabled() {
		limiter = redis.NewRateLimiter(rc, "frontier").Bind(redis.YahooRateLimit(e.cfg.Yahoo.RatePerSec))
		cache = redis.NewCache(rc, "frontier")
		e.log.Info("Connected to price cache")
	}

	httpClient := httputil.New(e.cfg, e.log).WithLimiter(limiter)
	source := yahoo.NewClient(httpClient, e.log, e.cfg.Yahoo.BaseURL)

	return pricedata.NewCachedProvider(source, store, cache, e.cfg.Redis.TTL, e.log), nil
}

// Close releases the price backends
func (e *environment) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	e.db.Close()
}
