package analyzing

import (
	"fmt"
	"sort"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/aggregating"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/normalizing"
)

// Engine executa o pipeline completo sobre um lote.
// Não guarda estado entre execuções: a mesma entrada gera a mesma saída.
type Engine struct {
	normalizer *normalizing.Normalizer
	thresholds domain.Thresholds
}

func NewEngine(maxRows int, thresholds domain.Thresholds) *Engine {
	return &Engine{
		normalizer: normalizing.New(maxRows),
		thresholds: thresholds,
	}
}

// Run normaliza as linhas e calcula o resultado em duas fases:
// primeiro métricas base e caixa de todos os produtos, depois health score e riscos.
func (e *Engine) Run(rows []domain.RawRow, existing []string) domain.AnalysisOutput {
	normalized := e.normalizer.Normalize(rows, existing)
	report := normalized.Report

	if report.Rejected {
		return domain.AnalysisOutput{
			Results: []domain.ProductResult{},
			Report:  report,
			Summary: aggregating.Summarize(nil),
		}
	}

	results := make([]domain.ProductResult, len(normalized.Products))

	// Fase 1
	for i, product := range normalized.Products {
		metrics := BaseMetrics(product)
		results[i] = domain.ProductResult{
			Product:  product,
			Metrics:  metrics,
			CashFlow: SimulateCashFlow(product, metrics),
		}

		if metrics.ProfitMarginPct < 0 {
			report.Warnings = append(report.Warnings, domain.RowIssue{
				Row:        product.RowIndex,
				Identifier: product.Identifier,
				Field:      "profit_margin_pct",
				Value:      fmt.Sprintf("%.1f", metrics.ProfitMarginPct),
				Kind:       domain.IssueAdvisory,
				Message:    "margem negativa: o produto gera prejuízo por unidade",
			})
		}
	}

	// Fase 2
	for i := range results {
		r := &results[i]
		r.Metrics.HealthScore, r.Metrics.SubScores = HealthScore(r.Metrics, r.CashFlow, r.Product, e.thresholds)
		r.Risk = ClassifyRisk(r.Product, r.Metrics, r.CashFlow, e.thresholds)
	}

	sort.SliceStable(report.Warnings, func(i, j int) bool {
		return report.Warnings[i].Row < report.Warnings[j].Row
	})

	return domain.AnalysisOutput{
		Results: results,
		Report:  report,
		Summary: aggregating.Summarize(results),
	}
}
