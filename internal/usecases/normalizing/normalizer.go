// Package normalizing converte linhas brutas de upload em produtos validados
package normalizing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// DefaultMaxRows é o limite de linhas aceitas por lote
const DefaultMaxRows = 500

// Valores padrão dos campos opcionais
const (
	DefaultReturnRatePct       = 5.0
	DefaultReferralFeePct      = 15.0
	DefaultFBAFeePct           = 8.0
	DefaultVATPct              = 19.0
	DefaultShippingCostPerUnit = 2.0
	DefaultInitialOrderFactor  = 2.0 // Pedido inicial = 2x velocidade mensal
	DefaultInitialCash         = 5000.0
	DefaultCompetitorCount     = 0
	DefaultAverageRating       = 3.5
)

// Normalizer aplica a tabela de campos sobre as linhas de um lote
type Normalizer struct {
	maxRows  int
	validate *validator.Validate
	specs    map[Field]FieldSpec
}

// New cria um normalizador; maxRows <= 0 usa DefaultMaxRows
func New(maxRows int) *Normalizer {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	specs := make(map[Field]FieldSpec, len(FieldTable))
	for _, spec := range FieldTable {
		specs[spec.Field] = spec
	}

	return &Normalizer{
		maxRows:  maxRows,
		validate: validator.New(),
		specs:    specs,
	}
}

// Normalize processa o lote inteiro. Linhas com erro estrutural ficam fora de Products
// e aparecem em Report.Errors. Mais de maxRows linhas aceitas rejeita o lote.
func (n *Normalizer) Normalize(rows []domain.RawRow, existing []string) domain.NormalizationResult {
	report := domain.BatchReport{
		TotalRows:  len(rows),
		Errors:     make([]domain.RowIssue, 0),
		Warnings:   make([]domain.RowIssue, 0),
		Duplicates: make([]string, 0),
	}

	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, id := range existing {
		seen[normalizeIdentifier(id)] = struct{}{}
	}
	duplicated := make(map[string]struct{})

	products := make([]domain.ValidatedProduct, 0, len(rows))
	for i, row := range rows {
		product, issues := n.NormalizeRow(i, row)

		for _, issue := range issues {
			if issue.Kind == domain.IssueStructural {
				report.Errors = append(report.Errors, issue)
			} else {
				report.Warnings = append(report.Warnings, issue)
			}
		}

		if product == nil {
			continue
		}

		if _, exists := seen[product.Identifier]; exists {
			report.Warnings = append(report.Warnings, domain.RowIssue{
				Row:        i,
				Identifier: product.Identifier,
				Field:      string(FieldIdentifier),
				Value:      product.Identifier,
				Kind:       domain.IssueAdvisory,
				Message:    "identificador duplicado, revise antes de decidir",
			})
			if _, listed := duplicated[product.Identifier]; !listed {
				duplicated[product.Identifier] = struct{}{}
				report.Duplicates = append(report.Duplicates, product.Identifier)
			}
		}
		seen[product.Identifier] = struct{}{}

		products = append(products, *product)
	}

	if len(products) > n.maxRows {
		return domain.NormalizationResult{
			Products: []domain.ValidatedProduct{},
			Report: domain.BatchReport{
				Rejected:  true,
				TotalRows: len(rows),
				Errors: []domain.RowIssue{{
					Row:     domain.BatchRow,
					Kind:    domain.IssueStructural,
					Message: fmt.Sprintf("o lote possui %d linhas válidas, o máximo permitido é %d", len(products), n.maxRows),
				}},
				Warnings:   []domain.RowIssue{},
				Duplicates: []string{},
			},
		}
	}

	report.Accepted = len(products)

	return domain.NormalizationResult{
		Products: products,
		Report:   report,
	}
}

// NormalizeRow converte uma linha. Retorna nil quando algum campo obrigatório falha;
// as issues trazem erros estruturais, correções (fixable) e avisos.
func (n *Normalizer) NormalizeRow(index int, row domain.RawRow) (*domain.ValidatedProduct, []domain.RowIssue) {
	values := resolveFields(row)
	issues := make([]domain.RowIssue, 0)

	identifier := normalizeIdentifier(values[FieldIdentifier])
	report := func(field Field, value string, kind domain.IssueKind, message string) {
		issues = append(issues, domain.RowIssue{
			Row:        index,
			Identifier: identifier,
			Field:      string(field),
			Value:      value,
			Kind:       kind,
			Message:    message,
		})
	}

	rejected := false
	requireText := func(field Field, value string) string {
		if value == "" {
			report(field, value, domain.IssueStructural, "campo obrigatório ausente")
			rejected = true
			return ""
		}
		if err := n.validate.Var(value, n.specs[field].Rule); err != nil {
			report(field, value, domain.IssueStructural, n.specs[field].Message)
			rejected = true
		}
		return value
	}
	requireNumber := func(field Field) float64 {
		raw := values[field]
		if raw == "" {
			report(field, raw, domain.IssueStructural, "campo obrigatório ausente")
			rejected = true
			return 0
		}
		v, err := parseNumber(raw)
		if err != nil {
			report(field, raw, domain.IssueStructural, err.Error())
			rejected = true
			return 0
		}
		if err := n.validate.Var(v, n.specs[field].Rule); err != nil {
			report(field, raw, domain.IssueStructural, n.specs[field].Message)
			rejected = true
		}
		return v
	}
	optionalNumber := func(field Field, fallback float64) float64 {
		raw := values[field]
		if raw == "" {
			return fallback
		}
		v, err := parseNumber(raw)
		if err != nil {
			report(field, raw, domain.IssueFixable, fmt.Sprintf("%s, usando padrão %g", err.Error(), fallback))
			return fallback
		}
		if err := n.validate.Var(v, n.specs[field].Rule); err != nil {
			report(field, raw, domain.IssueFixable, fmt.Sprintf("%s, usando padrão %g", n.specs[field].Message, fallback))
			return fallback
		}
		return v
	}

	product := &domain.ValidatedProduct{
		RowIndex:   index,
		Identifier: requireText(FieldIdentifier, identifier),
		Name:       requireText(FieldName, strings.TrimSpace(values[FieldName])),
	}
	product.Price = requireNumber(FieldPrice)
	product.CostPerUnit = requireNumber(FieldCost)
	product.MonthlyVelocity = requireNumber(FieldMonthlyVelocity)

	if rejected {
		return nil, issues
	}

	product.ReturnRatePct = optionalNumber(FieldReturnRate, DefaultReturnRatePct)
	product.ReferralFeePct = optionalNumber(FieldReferralFee, DefaultReferralFeePct)
	product.FBAFeePct = optionalNumber(FieldFBAFee, DefaultFBAFeePct)
	product.VATPct = optionalNumber(FieldVAT, DefaultVATPct)
	product.ShippingCostPerUnit = optionalNumber(FieldShippingCost, DefaultShippingCostPerUnit)
	product.InitialOrderQty = optionalNumber(FieldInitialOrderQty, product.MonthlyVelocity*DefaultInitialOrderFactor)
	product.InitialCash = optionalNumber(FieldInitialCash, DefaultInitialCash)
	product.AverageRating = optionalNumber(FieldAverageRating, DefaultAverageRating)

	product.CompetitorCount = DefaultCompetitorCount
	if raw := values[FieldCompetitorCount]; raw != "" {
		count, err := parseCount(raw)
		switch {
		case err != nil:
			report(FieldCompetitorCount, raw, domain.IssueFixable, fmt.Sprintf("número inteiro inválido, usando padrão %d", DefaultCompetitorCount))
		case n.validate.Var(count, n.specs[FieldCompetitorCount].Rule) != nil:
			report(FieldCompetitorCount, raw, domain.IssueFixable, fmt.Sprintf("%s, usando padrão %d", n.specs[FieldCompetitorCount].Message, DefaultCompetitorCount))
		default:
			product.CompetitorCount = count
		}
	}

	product.Category = domain.DefaultCategory
	if category := strings.TrimSpace(values[FieldCategory]); category != "" {
		if err := n.validate.Var(category, n.specs[FieldCategory].Rule); err != nil {
			report(FieldCategory, category, domain.IssueFixable, fmt.Sprintf("%s, usando padrão %s", n.specs[FieldCategory].Message, domain.DefaultCategory))
		} else {
			product.Category = category
		}
	}

	if product.MonthlyVelocity == 0 {
		report(FieldMonthlyVelocity, values[FieldMonthlyVelocity], domain.IssueAdvisory, "produto sem vendas mensais, métricas de tempo ficam ilimitadas")
	}

	return product, issues
}

// resolveFields leva as chaves da linha para os campos canônicos.
// Chaves brutas são visitadas em ordem alfabética e aliases na ordem da tabela,
// garantindo o mesmo resultado para a mesma entrada.
func resolveFields(row domain.RawRow) map[Field]string {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	byKey := make(map[string]string, len(row))
	for _, key := range keys {
		value := strings.TrimSpace(row[key])
		if value == "" {
			continue
		}
		canonical := canonicalKey(key)
		if _, exists := byKey[canonical]; !exists {
			byKey[canonical] = value
		}
	}

	values := make(map[Field]string, len(FieldTable))
	for _, spec := range FieldTable {
		for _, alias := range spec.Aliases {
			if value, ok := byKey[canonicalKey(alias)]; ok {
				values[spec.Field] = value
				break
			}
		}
	}

	return values
}

func normalizeIdentifier(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
