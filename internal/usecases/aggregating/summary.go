// Package aggregating consolida os resultados por produto em visões de portfólio
package aggregating

import (
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// Summarize calcula médias, somas e contagens por tier do lote.
// Break-even e runway ilimitados ficam fora das médias e são contados à parte.
func Summarize(results []domain.ProductResult) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		TotalProducts:    len(results),
		AvgBreakEvenDays: domain.Unbounded(),
		AvgRunwayMonths:  domain.Unbounded(),
		RedByCategory:    make(map[domain.RiskCategory]int, len(domain.RiskCategories)),
	}
	for _, category := range domain.RiskCategories {
		summary.RedByCategory[category] = 0
	}

	if len(results) == 0 {
		return summary
	}

	var (
		sumProfit, sumMargin, sumHealth float64
		sumBreakEven, sumRunway         float64
		finiteBreakEven, finiteRunway   int
	)

	for _, r := range results {
		sumProfit += r.Metrics.ProfitPerUnit
		sumMargin += r.Metrics.ProfitMarginPct
		sumHealth += r.Metrics.HealthScore
		summary.TotalMonthlyProfit += r.Metrics.TotalMonthlyProfit

		if days, ok := r.Metrics.BreakEvenDays.Value(); ok {
			sumBreakEven += days
			finiteBreakEven++
		} else {
			summary.UnboundedBreakEven++
		}

		if months, ok := r.CashFlow.RunwayMonths.Value(); ok {
			sumRunway += months
			finiteRunway++
		} else {
			summary.UnboundedRunway++
		}

		switch r.Risk.Tier {
		case domain.TierCritical:
			summary.CriticalCount++
		case domain.TierWarning:
			summary.WarningCount++
		default:
			summary.HealthyCount++
		}
		if r.Risk.HardStop {
			summary.HardStopCount++
		}

		for _, a := range r.Risk.Assessments {
			if a.Level == domain.RiskRed {
				summary.RedByCategory[a.Category]++
			}
		}
	}

	n := float64(len(results))
	summary.AvgProfitPerUnit = sumProfit / n
	summary.AvgProfitMarginPct = sumMargin / n
	summary.AvgHealthScore = sumHealth / n

	if finiteBreakEven > 0 {
		summary.AvgBreakEvenDays = domain.Finite(sumBreakEven / float64(finiteBreakEven))
	}
	if finiteRunway > 0 {
		summary.AvgRunwayMonths = domain.Finite(sumRunway / float64(finiteRunway))
	}

	return summary
}
