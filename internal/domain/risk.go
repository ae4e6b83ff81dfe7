package domain

// RiskLevel é o nível de risco de uma dimensão
type RiskLevel string

const (
	RiskGreen  RiskLevel = "green"
	RiskYellow RiskLevel = "yellow"
	RiskRed    RiskLevel = "red"
)

// RiskCategory identifica uma das cinco dimensões de risco
type RiskCategory string

const (
	RiskProfitability RiskCategory = "profitability"
	RiskBreakEven     RiskCategory = "break_even"
	RiskCashFlow      RiskCategory = "cash_flow"
	RiskCompetition   RiskCategory = "competition"
	RiskInventory     RiskCategory = "inventory"
)

// RiskCategories mantém a ordem fixa das dimensões
var RiskCategories = []RiskCategory{
	RiskProfitability,
	RiskBreakEven,
	RiskCashFlow,
	RiskCompetition,
	RiskInventory,
}

// RiskAssessment é a avaliação de uma dimensão de risco
type RiskAssessment struct {
	Category    RiskCategory `json:"category"`
	Level       RiskLevel    `json:"level"`
	Message     string       `json:"message"`
	ActionItems []string     `json:"action_items"`
}

// RiskTier é a classificação geral do produto
type RiskTier string

const (
	TierHealthy  RiskTier = "healthy"
	TierWarning  RiskTier = "warning"
	TierCritical RiskTier = "critical"
)

// ParseRiskTier valida um tier vindo de fora (ex: query string)
func ParseRiskTier(s string) (RiskTier, bool) {
	switch RiskTier(s) {
	case TierHealthy, TierWarning, TierCritical:
		return RiskTier(s), true
	}
	return "", false
}

// RiskProfile agrega as cinco avaliações de um produto
type RiskProfile struct {
	Assessments    []RiskAssessment `json:"assessments"`
	Tier           RiskTier         `json:"tier"`
	CriticalCount  int              `json:"critical_count"`
	WarningCount   int              `json:"warning_count"`
	HardStop       bool             `json:"hard_stop"`
	Recommendation string           `json:"recommendation"`
}

// Level retorna o nível de uma dimensão (verde quando ausente)
func (p RiskProfile) Level(category RiskCategory) RiskLevel {
	for _, a := range p.Assessments {
		if a.Category == category {
			return a.Level
		}
	}
	return RiskGreen
}
