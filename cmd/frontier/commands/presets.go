package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/render"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "프리셋 포트폴리오 목록",
	Long: `Lists the preset portfolios of the analysis config with their weights.

Example:
  go run ./cmd/frontier presets
  go run ./cmd/frontier presets --config my-analysis.yaml`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(true)
	if err != nil {
		return err
	}
	a := env.analysis.Analysis
	out := cmd.OutOrStdout()

	benchmark := a.Benchmark
	if benchmark == "" {
		benchmark = "(none)"
	}
	printHeader(out, "Analysis Config", []string{"Start", "Risk-free", "Benchmark", "Solver", "Presets"}, map[string]string{
		"Start":     a.LookbackStart,
		"Risk-free": render.Percent(a.RiskFreeRate),
		"Benchmark": benchmark,
		"Solver":    a.Solver.Method,
		"Presets":   fmt.Sprintf("%d", len(env.analysis.Presets)),
	})

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Preset\tHoldings")
	for _, p := range env.analysis.Presets {
		parts := make([]string, len(p.Holdings))
		for i, h := range p.Holdings {
			parts[i] = fmt.Sprintf("%s %s", h.Ticker, render.Weight(h.Weight))
		}
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, strings.Join(parts, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, doubleRule)
	return nil
}
