package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/analysis"
	"github.com/wonny/frontier/internal/pricedata"
	"github.com/wonny/frontier/internal/render"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "포트폴리오 최적화 실행",
	Long: `Runs one analysis and prints the metrics and allocation tables.

The portfolio is either a preset from the analysis config or a manual
ticker/weight list. Prices come from Yahoo Finance (through the Redis
cache and Postgres store when enabled) or from a wide CSV with --offline.

Example:
  go run ./cmd/frontier analyze --preset "Tech Core"
  go run ./cmd/frontier analyze --tickers AAPL,MSFT,GOOG --weights 0.5,0.3,0.2 --from 2020-01-01
  go run ./cmd/frontier analyze --preset "Tech Core" --offline prices.csv --benchmark ""
  go run ./cmd/frontier analyze --preset "Tech Core" --chart-dir out --json`,
	RunE: runAnalyze,
}

var (
	analyzePreset    string
	analyzeTickers   string
	analyzeWeights   string
	analyzeFrom      string
	analyzeTo        string
	analyzeBenchmark string
	analyzeRiskFree  float64
	analyzeMethod    string
	analyzeChartDir  string
	analyzeOffline   string
	analyzeJSON      bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVarP(&analyzePreset, "preset", "p", "", "preset name (see: frontier presets)")
	analyzeCmd.Flags().StringVar(&analyzeTickers, "tickers", "", "comma-separated tickers, e.g. AAPL,MSFT")
	analyzeCmd.Flags().StringVar(&analyzeWeights, "weights", "", "comma-separated weights summing to 1, e.g. 0.6,0.4")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "start date YYYY-MM-DD (default: lookback_start)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "end date YYYY-MM-DD (default: today)")
	analyzeCmd.Flags().StringVar(&analyzeBenchmark, "benchmark", "", `benchmark ticker, "" to disable (default: config benchmark)`)
	analyzeCmd.Flags().Float64Var(&analyzeRiskFree, "risk-free", 0, "annual risk-free rate (default: config risk_free_rate)")
	analyzeCmd.Flags().StringVar(&analyzeMethod, "method", "", "solver method: projected_gradient|nelder_mead")
	analyzeCmd.Flags().StringVar(&analyzeChartDir, "chart-dir", "", "write PNG charts into this directory")
	analyzeCmd.Flags().StringVar(&analyzeOffline, "offline", "", "read prices from a wide CSV (Date,<TICKER>...) instead of Yahoo")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")

	analyzeCmd.MarkFlagsMutuallyExclusive("preset", "tickers")
	analyzeCmd.MarkFlagsRequiredTogether("tickers", "weights")
	analyzeCmd.MarkFlagsOneRequired("preset", "tickers")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var provider pricedata.Provider
	if analyzeOffline != "" {
		fp, err := pricedata.OpenFile(analyzeOffline)
		if err != nil {
			return fmt.Errorf("open offline prices: %w", err)
		}
		env.log.WithField("tickers", fp.Tickers()).Debug("Loaded offline prices")
		provider = fp
	} else {
		cp, err := env.priceProvider(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		provider = cp
	}

	service, err := analysis.NewService(env.analysis, provider, env.log)
	if err != nil {
		return err
	}

	req := analysis.Request{
		Preset:  analyzePreset,
		Tickers: analyzeTickers,
		Weights: analyzeWeights,
		From:    analyzeFrom,
		To:      analyzeTo,
		Method:  analyzeMethod,
	}
	if cmd.Flags().Changed("benchmark") {
		req.Benchmark = &analyzeBenchmark
	}
	if cmd.Flags().Changed("risk-free") {
		req.RiskFreeRate = &analyzeRiskFree
	}

	report, err := service.Analyze(ctx, req)
	if errors.Is(err, analysis.ErrUnknownPreset) {
		return fmt.Errorf("%w (%s)", err, presetHint(env.analysis.PresetNames()))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := render.WriteText(out, report); err != nil {
		return err
	}

	if analyzeChartDir != "" {
		// JSON 모드에서는 stdout을 깨끗하게 유지
		msgOut := out
		if analyzeJSON {
			msgOut = cmd.ErrOrStderr()
		}
		written, err := render.WriteCharts(analyzeChartDir, report)
		if err != nil {
			return fmt.Errorf("write charts: %w", err)
		}
		printSuccess(msgOut, fmt.Sprintf("Wrote %d charts to %s", len(written), analyzeChartDir))
		printList(msgOut, written)
	}
	return nil
}

// presetHint lists the presets for error messages
func presetHint(names []string) string {
	return "available presets: " + strings.Join(names, ", ")
}
