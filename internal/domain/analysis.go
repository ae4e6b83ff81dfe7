package domain

import "time"

// ProductMetrics são as métricas derivadas de um produto
type ProductMetrics struct {
	ProfitPerUnit        float64   `json:"profit_per_unit"`
	ProfitMarginPct      float64   `json:"profit_margin_pct"`
	TotalMonthlyProfit   float64   `json:"total_monthly_profit"`
	InitialInventoryCost float64   `json:"initial_inventory_cost"`
	BreakEvenDays        Measure   `json:"break_even_days"`
	TurnoverDays         Measure   `json:"turnover_days"`
	HealthScore          float64   `json:"health_score"`
	SubScores            SubScores `json:"sub_scores"`
}

// SubScores são as notas parciais (0-100) que compõem o health score
type SubScores struct {
	Margin      float64 `json:"margin"`
	BreakEven   float64 `json:"break_even"`
	CashFlow    float64 `json:"cash_flow"`
	Competition float64 `json:"competition"`
	Inventory   float64 `json:"inventory"`
}

// MonthlyState é a posição de caixa de um mês simulado
type MonthlyState struct {
	Month          int     `json:"month"`
	CashStart      float64 `json:"cash_start"`
	ProfitInflow   float64 `json:"profit_inflow"`
	ReorderOutflow float64 `json:"reorder_outflow"`
	CashEnd        float64 `json:"cash_end"`
	IsPositive     bool    `json:"is_positive"`
}

// NotReached indica que o break-even não ocorre dentro do horizonte
const NotReached = -1

// CashFlowProjection é a projeção mensal de caixa de um produto
type CashFlowProjection struct {
	Months             []MonthlyState `json:"months"`
	RunwayMonths       Measure        `json:"runway_months"`
	BreakEvenMonth     int            `json:"break_even_month"` // NotReached (-1) quando não atingido
	RequiredReserve    Measure        `json:"required_reserve"`
	MonthlyReorderCost float64        `json:"monthly_reorder_cost"`
	MonthlyProfit      float64        `json:"monthly_profit"`
	Degenerate         bool           `json:"degenerate"`
	DegenerateReason   string         `json:"degenerate_reason,omitempty"`
}

// BreakEvenReached informa se a projeção atinge o break-even no horizonte
func (p CashFlowProjection) BreakEvenReached() bool {
	return p.BreakEvenMonth != NotReached
}

// ProductResult é o registro consolidado de um produto analisado
type ProductResult struct {
	Product  ValidatedProduct   `json:"product"`
	Metrics  ProductMetrics     `json:"metrics"`
	CashFlow CashFlowProjection `json:"cash_flow"`
	Risk     RiskProfile        `json:"risk"`
}

// AnalysisOutput é a saída completa do pipeline para um lote
type AnalysisOutput struct {
	Results []ProductResult  `json:"results"`
	Report  BatchReport      `json:"report"`
	Summary PortfolioSummary `json:"summary"`
}

// AnalysisRun é uma execução armazenada pelo serviço de portfólio
type AnalysisRun struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	AnalysisOutput
}

// Identifiers retorna os identificadores aceitos na execução
func (r *AnalysisRun) Identifiers() []string {
	ids := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		ids = append(ids, result.Product.Identifier)
	}
	return ids
}
