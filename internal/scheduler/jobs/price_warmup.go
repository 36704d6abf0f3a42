package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/pricedata"
	"github.com/wonny/frontier/pkg/logger"
)

// PriceWarmupJob loads the price history of every preset ticker and the
// benchmark so the first analysis of the day is served from cache
type PriceWarmupJob struct {
	provider pricedata.Provider
	cfg      *analysisconfig.Config
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewPriceWarmupJob creates a new price warm-up job
func NewPriceWarmupJob(provider pricedata.Provider, cfg *analysisconfig.Config, schedule string, log *logger.Logger) *PriceWarmupJob {
	return &PriceWarmupJob{
		provider: provider,
		cfg:      cfg,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *PriceWarmupJob) Name() string {
	return "price_warmup"
}

// Schedule returns the cron schedule
func (j *PriceWarmupJob) Schedule() string {
	return j.schedule
}

// Run fetches [lookback_start, today] for all configured tickers.
// Tickers without prices are logged and skipped, not retried.
func (j *PriceWarmupJob) Run(ctx context.Context) error {
	from, err := j.cfg.Analysis.StartDate()
	if err != nil {
		return err
	}
	to := contracts.TruncateDay(j.now())
	tickers := j.cfg.AllTickers()

	j.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"from":    from.Format(analysisconfig.DateLayout),
	}).Debug("Starting price warm-up")

	_, err = pricedata.FetchAll(ctx, j.provider, tickers, from, to)

	var npe *contracts.NoPricesError
	if errors.As(err, &npe) {
		j.logger.WithField("tickers", npe.Tickers).Warn("Price warm-up skipped tickers without prices")
		return nil
	}
	if err != nil {
		return err
	}

	j.logger.WithField("tickers", len(tickers)).Info("Price warm-up completed")
	return nil
}
