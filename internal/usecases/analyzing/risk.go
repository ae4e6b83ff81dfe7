package analyzing

import (
	"fmt"
	"math"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// ClassifyRisk avalia as cinco dimensões de risco e consolida o perfil do produto
func ClassifyRisk(p domain.ValidatedProduct, m domain.ProductMetrics, cf domain.CashFlowProjection, th domain.Thresholds) domain.RiskProfile {
	assessments := []domain.RiskAssessment{
		profitabilityRisk(p, m, th),
		breakEvenRisk(p, m, th),
		cashFlowRisk(p, cf, th),
		competitionRisk(p, th),
		inventoryRisk(p, m, th),
	}

	return buildProfile(assessments, th)
}

func buildProfile(assessments []domain.RiskAssessment, th domain.Thresholds) domain.RiskProfile {
	profile := domain.RiskProfile{
		Assessments: assessments,
		Tier:        domain.TierHealthy,
	}

	for _, a := range assessments {
		switch a.Level {
		case domain.RiskRed:
			profile.CriticalCount++
		case domain.RiskYellow:
			profile.WarningCount++
		}
	}

	switch {
	case profile.CriticalCount > 0:
		profile.Tier = domain.TierCritical
	case profile.WarningCount > 0:
		profile.Tier = domain.TierWarning
	}

	profile.HardStop = profile.CriticalCount >= th.HardStopRedCount

	switch {
	case profile.HardStop:
		profile.Recommendation = fmt.Sprintf("Não prossiga: %d dimensões em risco crítico", profile.CriticalCount)
	case profile.Tier == domain.TierCritical:
		profile.Recommendation = "Prossiga somente após resolver os riscos críticos"
	case profile.Tier == domain.TierWarning:
		profile.Recommendation = "Viável com ajustes nos pontos de atenção"
	default:
		profile.Recommendation = "Produto saudável, pode prosseguir"
	}

	return profile
}

func profitabilityRisk(p domain.ValidatedProduct, m domain.ProductMetrics, th domain.Thresholds) domain.RiskAssessment {
	a := domain.RiskAssessment{
		Category:    domain.RiskProfitability,
		ActionItems: []string{},
	}

	switch {
	case m.ProfitMarginPct >= th.ProfitabilityGreenPct:
		a.Level = domain.RiskGreen
		a.Message = fmt.Sprintf("Margem de %.1f%% dentro do alvo", m.ProfitMarginPct)
		return a
	case m.ProfitMarginPct >= th.ProfitabilityYellowPct:
		a.Level = domain.RiskYellow
		a.Message = fmt.Sprintf("Margem de %.1f%% abaixo do alvo de %.0f%%", m.ProfitMarginPct, th.ProfitabilityGreenPct)
	default:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Margem de %.1f%% insuficiente", m.ProfitMarginPct)
	}

	if price, ok := priceForMargin(p, th.ProfitabilityGreenPct); ok {
		a.ActionItems = append(a.ActionItems, fmt.Sprintf(
			"Aumente o preço em €%.2f (para €%.2f) para atingir %.0f%% de margem",
			price-p.Price, price, th.ProfitabilityGreenPct,
		))
	} else {
		a.ActionItems = append(a.ActionItems, "As taxas consomem a receita: revise taxas e custos antes de ajustar o preço")
	}
	a.ActionItems = append(a.ActionItems, "Negocie o custo unitário com o fornecedor")

	return a
}

// priceForMargin resolve o preço que gera a margem alvo mantendo custos e taxas percentuais
func priceForMargin(p domain.ValidatedProduct, targetPct float64) (float64, bool) {
	keep := 1 - (p.ReturnRatePct+p.ReferralFeePct+p.FBAFeePct+p.VATPct)/100
	denominator := keep - targetPct/100
	if denominator <= 0 {
		return 0, false
	}
	return (p.CostPerUnit + p.ShippingCostPerUnit) / denominator, true
}

func breakEvenRisk(p domain.ValidatedProduct, m domain.ProductMetrics, th domain.Thresholds) domain.RiskAssessment {
	a := domain.RiskAssessment{
		Category:    domain.RiskBreakEven,
		ActionItems: []string{},
	}

	days, finite := m.BreakEvenDays.Value()
	switch {
	case !finite:
		a.Level = domain.RiskRed
		a.Message = "O investimento inicial nunca é recuperado"
	case days < th.BreakEvenGreenDays:
		a.Level = domain.RiskGreen
		a.Message = fmt.Sprintf("Break-even em %.1f dias", days)
		return a
	case days <= th.BreakEvenYellowDays:
		a.Level = domain.RiskYellow
		a.Message = fmt.Sprintf("Break-even em %.1f dias", days)
	default:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Break-even lento: %.1f dias", days)
	}

	unitCost := p.CostPerUnit + p.ShippingCostPerUnit
	if m.ProfitPerUnit > 0 && p.MonthlyVelocity > 0 && unitCost > 0 {
		dailyProfit := m.ProfitPerUnit * p.MonthlyVelocity / DaysPerMonth
		qty := math.Floor(dailyProfit * th.BreakEvenYellowDays / unitCost)
		a.ActionItems = append(a.ActionItems, fmt.Sprintf(
			"Limite o pedido inicial a %.0f unidades para recuperar o investimento em %.0f dias",
			qty, th.BreakEvenYellowDays,
		))
	} else {
		a.ActionItems = append(a.ActionItems, "Torne o produto lucrativo e com vendas antes de investir em estoque")
	}

	return a
}

func cashFlowRisk(p domain.ValidatedProduct, cf domain.CashFlowProjection, th domain.Thresholds) domain.RiskAssessment {
	a := domain.RiskAssessment{
		Category:    domain.RiskCashFlow,
		ActionItems: []string{},
	}

	if cf.Degenerate {
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Fluxo de caixa inviável: %s", cf.DegenerateReason)
		a.ActionItems = append(a.ActionItems, "Não reabasteça o estoque até o produto gerar lucro com vendas")
		return a
	}

	runway, finite := cf.RunwayMonths.Value()
	switch {
	case !finite:
		a.Level = domain.RiskGreen
		a.Message = "O caixa permanece positivo em todo o horizonte"
		return a
	case runway >= th.RunwayGreenMonths:
		a.Level = domain.RiskGreen
		a.Message = fmt.Sprintf("Caixa dura %.1f meses", runway)
		return a
	case runway >= th.RunwayYellowMonths:
		a.Level = domain.RiskYellow
		a.Message = fmt.Sprintf("Caixa dura %.1f meses", runway)
	default:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Caixa esgota em %.1f meses", runway)
	}

	if reduction := reorderReduction(p, cf); reduction > 0 {
		a.ActionItems = append(a.ActionItems, fmt.Sprintf("Reduza o tamanho da recompra em %.0f%%", reduction*100))
	}
	if reserve, ok := cf.RequiredReserve.Value(); ok && reserve > 0 {
		a.ActionItems = append(a.ActionItems, fmt.Sprintf("Mantenha uma reserva de €%.2f para as recompras", reserve))
	}

	return a
}

// reorderReduction é a fração da recompra a cortar para que seis meses de recompras
// caibam no caixa inicial somado a cinco meses de lucro
func reorderReduction(p domain.ValidatedProduct, cf domain.CashFlowProjection) float64 {
	if cf.MonthlyReorderCost <= 0 {
		return 0
	}
	affordable := (p.InitialCash + ReserveProfitMonths*cf.MonthlyProfit) / ReserveReorderMonths
	return math.Min(math.Max(1-affordable/cf.MonthlyReorderCost, 0), 1)
}

func competitionRisk(p domain.ValidatedProduct, th domain.Thresholds) domain.RiskAssessment {
	a := domain.RiskAssessment{
		Category:    domain.RiskCompetition,
		ActionItems: []string{},
	}

	lowRating := p.AverageRating < th.LowRating
	saturated := p.CompetitorCount > th.CompetitionYellowMax
	weakListing := p.CompetitorCount > th.CompetitionRatingMin && lowRating

	switch {
	case saturated && weakListing:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Mercado saturado: %d vendedores e avaliação %.1f abaixo de %.1f", p.CompetitorCount, p.AverageRating, th.LowRating)
	case saturated:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Mercado saturado: %d vendedores", p.CompetitorCount)
	case weakListing:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("%d vendedores e avaliação %.1f abaixo de %.1f", p.CompetitorCount, p.AverageRating, th.LowRating)
	case p.CompetitorCount <= th.CompetitionGreenMax:
		a.Level = domain.RiskGreen
		a.Message = fmt.Sprintf("Concorrência baixa: %d vendedores", p.CompetitorCount)
		return a
	default:
		a.Level = domain.RiskYellow
		a.Message = fmt.Sprintf("Concorrência moderada: %d vendedores", p.CompetitorCount)
	}

	a.ActionItems = append(a.ActionItems, "Diferencie o anúncio com bundle, embalagem ou fotos próprias")
	if lowRating {
		a.ActionItems = append(a.ActionItems, fmt.Sprintf("Eleve a avaliação média acima de %.1f antes de escalar", th.LowRating))
	}

	return a
}

func inventoryRisk(p domain.ValidatedProduct, m domain.ProductMetrics, th domain.Thresholds) domain.RiskAssessment {
	a := domain.RiskAssessment{
		Category:    domain.RiskInventory,
		ActionItems: []string{},
	}

	days, finite := m.TurnoverDays.Value()
	switch {
	case !finite:
		a.Level = domain.RiskRed
		a.Message = "Estoque parado: produto sem vendas"
		a.ActionItems = append(a.ActionItems, "Valide a demanda antes de comprar estoque")
		return a
	case days < th.TurnoverGreenDays:
		a.Level = domain.RiskGreen
		a.Message = fmt.Sprintf("Giro de estoque em %.1f dias", days)
		return a
	case days <= th.TurnoverYellowDays:
		a.Level = domain.RiskYellow
		a.Message = fmt.Sprintf("Giro de estoque em %.1f dias", days)
	default:
		a.Level = domain.RiskRed
		a.Message = fmt.Sprintf("Giro lento: %.1f dias", days)
	}

	a.ActionItems = append(a.ActionItems, fmt.Sprintf(
		"Reduza o pedido para cerca de %.0f unidades (um mês de vendas)",
		math.Ceil(p.MonthlyVelocity),
	))

	return a
}
