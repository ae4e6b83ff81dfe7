// Package domain contém as estruturas de dados do domínio da aplicação
package domain

// RawRow é uma linha bruta vinda de um upload (chaves e valores como texto)
type RawRow map[string]string

// DefaultCategory é usada quando a linha não informa categoria
const DefaultCategory = "Uncategorized"

// ValidatedProduct é o registro canônico e tipado de um produto aceito
type ValidatedProduct struct {
	RowIndex            int     `json:"row_index"` // Posição original no lote (base 0)
	Identifier          string  `json:"identifier"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	CostPerUnit         float64 `json:"cost_per_unit"`
	MonthlyVelocity     float64 `json:"monthly_velocity"`
	ReturnRatePct       float64 `json:"return_rate_pct"`
	ReferralFeePct      float64 `json:"referral_fee_pct"`
	FBAFeePct           float64 `json:"fba_fee_pct"`
	VATPct              float64 `json:"vat_pct"`
	ShippingCostPerUnit float64 `json:"shipping_cost_per_unit"`
	InitialOrderQty     float64 `json:"initial_order_qty"`
	InitialCash         float64 `json:"initial_cash"`
	CompetitorCount     int     `json:"competitor_count"`
	AverageRating       float64 `json:"average_rating"`
	Category            string  `json:"category"`
}

// IssueKind classifica os problemas encontrados no lote
type IssueKind string

const (
	IssueStructural IssueKind = "structural" // Linha ou lote rejeitado
	IssueFixable    IssueKind = "fixable"    // Campo opcional substituído pelo padrão
	IssueAdvisory   IssueKind = "advisory"   // Apenas informativo
)

// RowIssue descreve um problema em uma linha (ou no lote quando Row = -1)
type RowIssue struct {
	Row        int       `json:"row"`
	Identifier string    `json:"identifier,omitempty"`
	Field      string    `json:"field,omitempty"`
	Value      string    `json:"value,omitempty"`
	Kind       IssueKind `json:"kind"`
	Message    string    `json:"message"`
}

// BatchRow indica um problema que se aplica ao lote inteiro
const BatchRow = -1

// BatchReport é o relatório separado de erros, avisos e duplicados
type BatchReport struct {
	Rejected   bool       `json:"rejected"`
	TotalRows  int        `json:"total_rows"`
	Accepted   int        `json:"accepted"`
	Errors     []RowIssue `json:"errors"`
	Warnings   []RowIssue `json:"warnings"`
	Duplicates []string   `json:"duplicates"`
}

// NormalizationResult é a saída do normalizador
type NormalizationResult struct {
	Products []ValidatedProduct
	Report   BatchReport
}
