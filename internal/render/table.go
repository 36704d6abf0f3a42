// Package render turns an analysis report into text tables and PNG charts.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/wonny/frontier/internal/analysis"
)

// Display precision
const (
	PercentPlaces = 2
	SharpePlaces  = 2
	WeightPlaces  = 4
)

// Percent formats a fraction as "12.34%"
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(PercentPlaces) + "%"
}

// Ratio formats a Sharpe ratio to two places
func Ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(SharpePlaces)
}

// Weight rounds a weight to four places
func Weight(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(WeightPlaces)
}

// RoundWeight returns v rounded to four places
func RoundWeight(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(WeightPlaces).Float64()
	return f
}

// Label returns the display name of an allocation.
// The S&P 500 index gets its common name.
func Label(r *analysis.Report, a analysis.Allocation) string {
	if a.Name == analysis.AllocationBenchmark {
		if r.Benchmark == "^GSPC" {
			return "S&P 500"
		}
		return r.Benchmark
	}
	return a.Label
}

// MetricsRow is one formatted line of the metrics table
type MetricsRow struct {
	Portfolio    string `json:"portfolio"`
	AnnualReturn string `json:"annual_return"`
	Volatility   string `json:"volatility"`
	SharpeRatio  string `json:"sharpe_ratio"`
	TotalReturn  string `json:"total_return"`
	MaxDrawdown  string `json:"max_drawdown"`
	VaR95        string `json:"var_95"`
	CVaR95       string `json:"cvar_95"`
}

// MetricsTable formats every allocation's metrics, in report order
func MetricsTable(r *analysis.Report) []MetricsRow {
	rows := make([]MetricsRow, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		rows = append(rows, MetricsRow{
			Portfolio:    Label(r, a),
			AnnualReturn: Percent(a.Metrics.AnnualizedReturn),
			Volatility:   Percent(a.Metrics.AnnualizedVolatility),
			SharpeRatio:  Ratio(a.Metrics.SharpeRatio),
			TotalReturn:  Percent(a.Risk.TotalReturn),
			MaxDrawdown:  Percent(a.Risk.MaxDrawdown),
			VaR95:        Percent(a.Risk.VaR95),
			CVaR95:       Percent(a.Risk.CVaR95),
		})
	}
	return rows
}

// AllocationRow is one asset's weight in each compared portfolio
type AllocationRow struct {
	Ticker  string   `json:"ticker"`
	Weights []string `json:"weights"` // Portfolios() 순서
}

// AllocationTable formats per-asset weights, one row per asset
func AllocationTable(r *analysis.Report) (headers []string, rows []AllocationRow) {
	portfolios := r.Portfolios()
	headers = make([]string, len(portfolios))
	for i, a := range portfolios {
		headers[i] = a.Label
	}

	rows = make([]AllocationRow, 0, r.Assets.Len())
	for _, ticker := range r.Assets {
		row := AllocationRow{Ticker: ticker, Weights: make([]string, len(portfolios))}
		for i, a := range portfolios {
			row.Weights[i] = Weight(a.Weights[ticker])
		}
		rows = append(rows, row)
	}
	return headers, rows
}

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// WriteText prints the report as aligned text tables
func WriteText(w io.Writer, r *analysis.Report) error {
	var b strings.Builder

	fmt.Fprintln(&b, doubleRule)
	fmt.Fprintf(&b, "  %s\n", r.Portfolio)
	fmt.Fprintln(&b, singleRule)
	fmt.Fprintf(&b, "  Run ID    : %s\n", r.RunID)
	fmt.Fprintf(&b, "  Period    : %s ~ %s (%d returns)\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), r.Observations)
	fmt.Fprintf(&b, "  Assets    : %s\n", strings.Join(r.Assets, ", "))
	if r.Benchmark != "" {
		fmt.Fprintf(&b, "  Benchmark : %s\n", r.Benchmark)
	}
	fmt.Fprintf(&b, "  Risk-free : %s\n", Percent(r.Options.RiskFreeRate))
	fmt.Fprintln(&b, singleRule)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Portfolio\tAnnual Return\tVolatility\tSharpe Ratio\tTotal Return\tMax Drawdown\tVaR 95%\tCVaR 95%")
	for _, m := range MetricsTable(r) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Portfolio, m.AnnualReturn, m.Volatility, m.SharpeRatio,
			m.TotalReturn, m.MaxDrawdown, m.VaR95, m.CVaR95)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(&b, singleRule)

	headers, rows := AllocationTable(r)
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ticker\t%s\n", strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.Ticker, strings.Join(row.Weights, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range r.Portfolios() {
		if a.Optimization == nil {
			continue
		}
		switch {
		case a.FellBack:
			fmt.Fprintf(&b, "⚠️  %s did not converge after %d iterations, showing equal weights\n", a.Label, a.Optimization.Iterations)
		case !a.Optimization.Converged:
			fmt.Fprintf(&b, "⚠️  %s did not converge after %d iterations\n", a.Label, a.Optimization.Iterations)
		}
	}
	fmt.Fprintln(&b, doubleRule)

	_, err := io.WriteString(w, b.String())
	return err
}
