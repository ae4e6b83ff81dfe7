package aggregating

import (
	"errors"
	"sort"
	"strings"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

var ErrUnknownSortField = errors.New("campo de ordenação desconhecido")

// SortRow ordena pela posição original no lote
const SortRow = "row"

type sortKey struct {
	text    string
	measure domain.Measure
	isText  bool
}

type keyFunc func(r domain.ProductResult) sortKey

func numberKey(f func(r domain.ProductResult) float64) keyFunc {
	return func(r domain.ProductResult) sortKey {
		return sortKey{measure: domain.Finite(f(r))}
	}
}

func measureKey(f func(r domain.ProductResult) domain.Measure) keyFunc {
	return func(r domain.ProductResult) sortKey {
		return sortKey{measure: f(r)}
	}
}

func textKey(f func(r domain.ProductResult) string) keyFunc {
	return func(r domain.ProductResult) sortKey {
		return sortKey{text: strings.ToLower(f(r)), isText: true}
	}
}

func riskKey(category domain.RiskCategory) keyFunc {
	return numberKey(func(r domain.ProductResult) float64 {
		return float64(levelRank(r.Risk.Level(category)))
	})
}

// sortKeys usa os mesmos nomes das colunas da exportação
var sortKeys = map[string]keyFunc{
	SortRow:              numberKey(func(r domain.ProductResult) float64 { return float64(r.Product.RowIndex) }),
	"identifier":         textKey(func(r domain.ProductResult) string { return r.Product.Identifier }),
	"name":               textKey(func(r domain.ProductResult) string { return r.Product.Name }),
	"category":           textKey(func(r domain.ProductResult) string { return r.Product.Category }),
	"price":              numberKey(func(r domain.ProductResult) float64 { return r.Product.Price }),
	"cost":               numberKey(func(r domain.ProductResult) float64 { return r.Product.CostPerUnit }),
	"velocity":           numberKey(func(r domain.ProductResult) float64 { return r.Product.MonthlyVelocity }),
	"profitPerUnit":      numberKey(func(r domain.ProductResult) float64 { return r.Metrics.ProfitPerUnit }),
	"profitMarginPct":    numberKey(func(r domain.ProductResult) float64 { return r.Metrics.ProfitMarginPct }),
	"totalMonthlyProfit": numberKey(func(r domain.ProductResult) float64 { return r.Metrics.TotalMonthlyProfit }),
	"breakEvenDays":      measureKey(func(r domain.ProductResult) domain.Measure { return r.Metrics.BreakEvenDays }),
	"cashRunwayMonths":   measureKey(func(r domain.ProductResult) domain.Measure { return r.CashFlow.RunwayMonths }),
	"turnoverDays":       measureKey(func(r domain.ProductResult) domain.Measure { return r.Metrics.TurnoverDays }),
	"healthScore":        numberKey(func(r domain.ProductResult) float64 { return r.Metrics.HealthScore }),
	"profitabilityRisk":  riskKey(domain.RiskProfitability),
	"breakEvenRisk":      riskKey(domain.RiskBreakEven),
	"cashFlowRisk":       riskKey(domain.RiskCashFlow),
	"competitionRisk":    riskKey(domain.RiskCompetition),
	"inventoryRisk":      riskKey(domain.RiskInventory),
	"criticalRiskCount":  numberKey(func(r domain.ProductResult) float64 { return float64(r.Risk.CriticalCount) }),
	"returnRatePct":      numberKey(func(r domain.ProductResult) float64 { return r.Product.ReturnRatePct }),
	"competitorCount":    numberKey(func(r domain.ProductResult) float64 { return float64(r.Product.CompetitorCount) }),
	"averageRating":      numberKey(func(r domain.ProductResult) float64 { return r.Product.AverageRating }),
}

// IsSortField informa se o campo pode ser usado em SortResults
func IsSortField(field string) bool {
	_, ok := sortKeys[field]
	return ok
}

// SortResults retorna uma cópia ordenada; empates seguem a ordem original das linhas.
// Medidas ilimitadas ficam depois das finitas na ordem crescente.
func SortResults(results []domain.ProductResult, field string, descending bool) ([]domain.ProductResult, error) {
	if field == "" {
		field = SortRow
	}

	key, ok := sortKeys[field]
	if !ok {
		return nil, ErrUnknownSortField
	}

	sorted := make([]domain.ProductResult, len(results))
	copy(sorted, results)

	keys := make([]sortKey, len(sorted))
	for i := range sorted {
		keys[i] = key(sorted[i])
	}

	indexes := make([]int, len(sorted))
	for i := range indexes {
		indexes[i] = i
	}

	sort.SliceStable(indexes, func(i, j int) bool {
		a, b := indexes[i], indexes[j]
		c := compareKeys(keys[a], keys[b])
		if descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return sorted[a].Product.RowIndex < sorted[b].Product.RowIndex
	})

	out := make([]domain.ProductResult, len(sorted))
	for i, idx := range indexes {
		out[i] = sorted[idx]
	}

	return out, nil
}

// FilterByTier retorna uma nova lista apenas com o tier pedido
func FilterByTier(results []domain.ProductResult, tier domain.RiskTier) []domain.ProductResult {
	filtered := make([]domain.ProductResult, 0, len(results))
	for _, r := range results {
		if r.Risk.Tier == tier {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func compareKeys(a, b sortKey) int {
	if a.isText || b.isText {
		return strings.Compare(a.text, b.text)
	}
	switch {
	case a.measure.Less(b.measure):
		return -1
	case b.measure.Less(a.measure):
		return 1
	}
	return 0
}

func levelRank(level domain.RiskLevel) int {
	switch level {
	case domain.RiskRed:
		return 2
	case domain.RiskYellow:
		return 1
	}
	return 0
}
