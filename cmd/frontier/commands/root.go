package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frontier",
	Short: "Portfolio optimizer (Max Sharpe / Min Volatility)",
	Long: `frontier compares a portfolio against its Max Sharpe and
Min Volatility reallocations over the same price history.

Usage:
  go run ./cmd/frontier [command]

Examples:
  go run ./cmd/frontier presets
  go run ./cmd/frontier analyze --preset "Tech Core"
  go run ./cmd/frontier analyze --tickers AAPL,MSFT --weights 0.6,0.4 --chart-dir out
  go run ./cmd/frontier serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisFile, "config", "", "analysis YAML (default: ANALYSIS_CONFIG or embedded defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
