// Package analyzing calcula métricas, projeção de caixa e riscos de cada produto
package analyzing

import (
	"math"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// DaysPerMonth é a convenção de dias por mês usada nas conversões
const DaysPerMonth = 30.0

// BaseMetrics calcula as métricas que não dependem da simulação de caixa.
// O health score é preenchido depois, por HealthScore.
func BaseMetrics(p domain.ValidatedProduct) domain.ProductMetrics {
	revenueAfterReturns := p.Price * (1 - p.ReturnRatePct/100)
	profitPerUnit := revenueAfterReturns -
		p.CostPerUnit -
		p.Price*p.ReferralFeePct/100 -
		p.Price*p.FBAFeePct/100 -
		p.Price*p.VATPct/100 -
		p.ShippingCostPerUnit

	margin := 0.0
	if p.Price > 0 {
		margin = profitPerUnit / p.Price * 100
	}

	metrics := domain.ProductMetrics{
		ProfitPerUnit:        bounded(profitPerUnit),
		ProfitMarginPct:      bounded(margin),
		TotalMonthlyProfit:   bounded(profitPerUnit * p.MonthlyVelocity),
		InitialInventoryCost: bounded((p.CostPerUnit + p.ShippingCostPerUnit) * p.InitialOrderQty),
		BreakEvenDays:        domain.Unbounded(),
		TurnoverDays:         domain.Unbounded(),
	}

	if p.MonthlyVelocity > 0 && profitPerUnit > 0 {
		dailyProfit := profitPerUnit * p.MonthlyVelocity / DaysPerMonth
		metrics.BreakEvenDays = domain.Finite(metrics.InitialInventoryCost / dailyProfit)
	}

	if p.MonthlyVelocity > 0 {
		metrics.TurnoverDays = domain.Finite(p.InitialOrderQty / p.MonthlyVelocity * DaysPerMonth)
	}

	return metrics
}

// HealthScore combina as cinco notas parciais conforme os pesos configurados.
// Depende da projeção de caixa, por isso roda na segunda fase do pipeline.
func HealthScore(m domain.ProductMetrics, cf domain.CashFlowProjection, p domain.ValidatedProduct, th domain.Thresholds) (float64, domain.SubScores) {
	sub := domain.SubScores{
		Margin:      clampScore(m.ProfitMarginPct / th.MarginTargetPct * 100),
		BreakEven:   decayScore(m.BreakEvenDays, th.BreakEvenTargetDays),
		CashFlow:    runwayScore(cf.RunwayMonths, th.RunwayTargetMonths),
		Competition: competitionScore(p, th),
		Inventory:   decayScore(m.TurnoverDays, th.TurnoverTargetDays),
	}

	w := th.Weights
	score := sub.Margin*w.Margin +
		sub.BreakEven*w.BreakEven +
		sub.CashFlow*w.CashFlow +
		sub.Competition*w.Competition +
		sub.Inventory*w.Inventory

	return clampScore(score), sub
}

// decayScore vale 100 até o alvo e cai linearmente até 0 no dobro do alvo
func decayScore(days domain.Measure, target float64) float64 {
	v, ok := days.Value()
	if !ok || target <= 0 {
		return 0
	}
	if v <= target {
		return 100
	}
	return clampScore(100 - (v-target)/target*100)
}

func runwayScore(runway domain.Measure, target float64) float64 {
	v, ok := runway.Value()
	if !ok {
		return 100
	}
	if target <= 0 {
		return 100
	}
	return clampScore(v / target * 100)
}

func competitionScore(p domain.ValidatedProduct, th domain.Thresholds) float64 {
	score := 100.0
	if excess := p.CompetitorCount - th.CompetitionTarget; excess > 0 {
		score -= float64(excess) * th.CompetitionPenalty
	}
	if p.AverageRating < th.LowRating && p.CompetitorCount > th.CompetitionRatingMin {
		score -= th.LowRatingScorePenalty
	}
	return clampScore(score)
}

// bounded mantém valores de saída finitos: NaN vira 0 e ±Inf o maior float64 com o mesmo sinal
func bounded(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
