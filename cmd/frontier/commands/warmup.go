package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/scheduler/jobs"
)

// warmupCmd represents the warmup command
var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "가격 캐시 warm-up 즉시 실행",
	Long: `Fetches the price history of every preset ticker and the benchmark
once, filling the Postgres store and Redis cache when they are enabled.
The serve command runs the same job on PRICE_WARMUP_SCHEDULE.

Example:
  go run ./cmd/frontier warmup
  go run ./cmd/frontier warmup --config my-analysis.yaml`,
	Args: cobra.NoArgs,
	RunE: runWarmup,
}

func init() {
	rootCmd.AddCommand(warmupCmd)
}

func runWarmup(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := env.priceProvider(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	tickers := env.analysis.AllTickers()
	printInfo(out, fmt.Sprintf("Warming %d tickers from %s", len(tickers), env.analysis.Analysis.LookbackStart))
	if env.db == nil && !env.redis.Enabled() {
		printWarning(out, "price store and cache are both disabled, nothing will be kept")
	}

	started := time.Now()
	job := jobs.NewPriceWarmupJob(provider, env.analysis, env.cfg.WarmupSchedule, env.log)
	if err := job.Run(ctx); err != nil {
		return err
	}

	printSuccess(out, fmt.Sprintf("Warm-up completed in %.2fs", time.Since(started).Seconds()))
	return nil
}
