package analyzing

import (
	"math"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

const (
	HorizonMonths        = 12
	SettlementLagMonths  = 2   // Meses 0 e 1 sem entrada de lucro
	ReorderSafetyFactor  = 1.2 // Recompra com 20% de margem de segurança
	ReserveReorderMonths = 6
	ReserveProfitMonths  = 5
	maxNegativeMonths    = 2
)

// SimulateCashFlow projeta o caixa mês a mês (0..12) a partir do caixa inicial.
// Produtos sem vendas ou com prejuízo por unidade retornam antes do laço.
func SimulateCashFlow(p domain.ValidatedProduct, m domain.ProductMetrics) domain.CashFlowProjection {
	reorderCost := 0.0
	if p.MonthlyVelocity > 0 {
		reorderCost = bounded(math.Ceil(p.MonthlyVelocity*ReorderSafetyFactor) * p.CostPerUnit)
	}

	projection := domain.CashFlowProjection{
		Months:             []domain.MonthlyState{},
		RunwayMonths:       domain.Unbounded(),
		BreakEvenMonth:     domain.NotReached,
		MonthlyReorderCost: reorderCost,
		MonthlyProfit:      m.TotalMonthlyProfit,
	}

	switch {
	case m.ProfitPerUnit < 0:
		projection.Degenerate = true
		projection.DegenerateReason = "produto com prejuízo por unidade"
		projection.RunwayMonths = domain.Finite(0)
		projection.RequiredReserve = domain.Unbounded()
		return projection
	case p.MonthlyVelocity <= 0:
		projection.Degenerate = true
		projection.DegenerateReason = "produto sem vendas mensais"
		projection.RunwayMonths = domain.Finite(0)
		projection.RequiredReserve = domain.Finite(requiredReserve(reorderCost, m.TotalMonthlyProfit))
		return projection
	}

	projection.RequiredReserve = domain.Finite(requiredReserve(reorderCost, m.TotalMonthlyProfit))

	cash := p.InitialCash
	negativeMonths := 0
	for month := 0; month <= HorizonMonths; month++ {
		state := domain.MonthlyState{
			Month:          month,
			CashStart:      cash,
			ReorderOutflow: reorderCost,
		}
		if month == 0 {
			state.ReorderOutflow = m.InitialInventoryCost
		}
		if month >= SettlementLagMonths {
			state.ProfitInflow = m.TotalMonthlyProfit
		}
		state.CashEnd = bounded(state.CashStart + state.ProfitInflow - state.ReorderOutflow)
		state.IsPositive = state.CashEnd >= 0

		projection.Months = append(projection.Months, state)

		if projection.RunwayMonths.IsUnbounded() && !state.IsPositive {
			projection.RunwayMonths = domain.Finite(crossingPoint(month, state.CashStart, state.CashEnd))
		}

		// Entradas acumuladas superam saídas acumuladas
		if projection.BreakEvenMonth == domain.NotReached && state.CashEnd > p.InitialCash {
			projection.BreakEvenMonth = month
		}

		cash = state.CashEnd

		if state.IsPositive {
			negativeMonths = 0
			continue
		}
		negativeMonths++
		if negativeMonths >= maxNegativeMonths {
			break
		}
	}

	return projection
}

// crossingPoint interpola o instante em que o caixa cruza zero dentro do mês
func crossingPoint(month int, cashStart, cashEnd float64) float64 {
	if cashStart <= 0 {
		return float64(month)
	}
	return float64(month) + cashStart/(cashStart-cashEnd)
}

func requiredReserve(reorderCost, monthlyProfit float64) float64 {
	return bounded(math.Max(reorderCost*ReserveReorderMonths-monthlyProfit*ReserveProfitMonths, 0))
}
