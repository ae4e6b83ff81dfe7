package domain

// HealthWeights são os pesos do health score (somam 1)
type HealthWeights struct {
	Margin      float64 `json:"margin"`
	BreakEven   float64 `json:"break_even"`
	CashFlow    float64 `json:"cash_flow"`
	Competition float64 `json:"competition"`
	Inventory   float64 `json:"inventory"`
}

// Thresholds reúne as constantes de pontuação e classificação de risco.
// Os valores padrão preservam o comportamento original; podem ser ajustados via configuração.
type Thresholds struct {
	Weights HealthWeights `json:"weights"`

	// Alvos das notas parciais do health score
	MarginTargetPct       float64 `json:"margin_target_pct"`
	BreakEvenTargetDays   float64 `json:"break_even_target_days"`
	RunwayTargetMonths    float64 `json:"runway_target_months"`
	CompetitionTarget     int     `json:"competition_target"`
	CompetitionPenalty    float64 `json:"competition_penalty"` // Pontos perdidos por vendedor acima do alvo
	TurnoverTargetDays    float64 `json:"turnover_target_days"`
	LowRatingScorePenalty float64 `json:"low_rating_score_penalty"`

	// Tabela de risco
	ProfitabilityGreenPct  float64 `json:"profitability_green_pct"`  // >= verde
	ProfitabilityYellowPct float64 `json:"profitability_yellow_pct"` // >= amarelo, abaixo vermelho
	BreakEvenGreenDays     float64 `json:"break_even_green_days"`    // < verde
	BreakEvenYellowDays    float64 `json:"break_even_yellow_days"`   // <= amarelo, acima vermelho
	RunwayGreenMonths      float64 `json:"runway_green_months"`      // >= verde
	RunwayYellowMonths     float64 `json:"runway_yellow_months"`     // >= amarelo, abaixo vermelho
	CompetitionGreenMax    int     `json:"competition_green_max"`    // <= verde
	CompetitionYellowMax   int     `json:"competition_yellow_max"`   // <= amarelo, acima vermelho
	CompetitionRatingMin   int     `json:"competition_rating_min"`   // Acima disso com nota baixa já é vermelho
	LowRating              float64 `json:"low_rating"`
	TurnoverGreenDays      float64 `json:"turnover_green_days"`  // < verde
	TurnoverYellowDays     float64 `json:"turnover_yellow_days"` // <= amarelo, acima vermelho
	HardStopRedCount       int     `json:"hard_stop_red_count"`
}

// DefaultThresholds retorna os valores históricos (25/25/25/15/10 e tabela de risco)
func DefaultThresholds() Thresholds {
	return Thresholds{
		Weights: HealthWeights{
			Margin:      0.25,
			BreakEven:   0.25,
			CashFlow:    0.25,
			Competition: 0.15,
			Inventory:   0.10,
		},
		MarginTargetPct:       25,
		BreakEvenTargetDays:   60,
		RunwayTargetMonths:    6,
		CompetitionTarget:     5,
		CompetitionPenalty:    5,
		TurnoverTargetDays:    30,
		LowRatingScorePenalty: 20,

		ProfitabilityGreenPct:  20,
		ProfitabilityYellowPct: 10,
		BreakEvenGreenDays:     14,
		BreakEvenYellowDays:    30,
		RunwayGreenMonths:      6,
		RunwayYellowMonths:     3,
		CompetitionGreenMax:    5,
		CompetitionYellowMax:   15,
		CompetitionRatingMin:   10,
		LowRating:              3.5,
		TurnoverGreenDays:      21,
		TurnoverYellowDays:     45,
		HardStopRedCount:       3,
	}
}
