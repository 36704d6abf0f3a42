package contracts

// MetricsRecord is the annualized return/risk summary of one allocation
type MetricsRecord struct {
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
}

// RiskSummary holds supplemental statistics reported next to MetricsRecord.
// VaR95/CVaR95는 기간 수익률 기준 손실(양수)
type RiskSummary struct {
	TotalReturn float64 `json:"total_return"`
	MaxDrawdown float64 `json:"max_drawdown"` // 음수 또는 0
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`
}
