package domain

// PortfolioSummary são as estatísticas do lote
type PortfolioSummary struct {
	TotalProducts      int                  `json:"total_products"`
	AvgProfitPerUnit   float64              `json:"avg_profit_per_unit"`
	AvgProfitMarginPct float64              `json:"avg_profit_margin_pct"`
	AvgHealthScore     float64              `json:"avg_health_score"`
	AvgBreakEvenDays   Measure              `json:"avg_break_even_days"` // Média só dos finitos; ilimitada quando não há nenhum
	AvgRunwayMonths    Measure              `json:"avg_runway_months"`
	UnboundedBreakEven int                  `json:"unbounded_break_even"`
	UnboundedRunway    int                  `json:"unbounded_runway"`
	TotalMonthlyProfit float64              `json:"total_monthly_profit"`
	HealthyCount       int                  `json:"healthy_count"`
	WarningCount       int                  `json:"warning_count"`
	CriticalCount      int                  `json:"critical_count"`
	HardStopCount      int                  `json:"hard_stop_count"`
	RedByCategory      map[RiskCategory]int `json:"red_by_category"`
}
