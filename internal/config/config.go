package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// Drivers de armazenamento das análises
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Storage   Storage   `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
	Analysis  Analysis  `mapstructure:",squash"`
	Retention Retention `mapstructure:",squash"`
	Scoring   Scoring   `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port" validate:"required"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb" validate:"gte=1"`
}

type Database struct {
	DSN             string        `mapstructure:"-"`
	Driver          string        `mapstructure:"database_driver"`
	Password        string        `mapstructure:"database_password"`
	URL             string        `mapstructure:"database_url"`
	User            string        `mapstructure:"database_user"`
	MaxOpenConns    int           `mapstructure:"database_max_open_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"database_conn_max_lifetime"`
}

type Storage struct {
	Driver string `mapstructure:"storage_driver" validate:"oneof=postgres memory"`
}

type Auth struct {
	Enabled bool   `mapstructure:"auth_enabled"`
	Secret  string `mapstructure:"auth_secret" validate:"required_if=Enabled true"`
}

type Analysis struct {
	MaxRows         int    `mapstructure:"analysis_max_rows" validate:"gte=1"`
	ExportDelimiter string `mapstructure:"export_delimiter" validate:"required"`
}

// Delimiter converte EXPORT_DELIMITER em rune; "tab" é aceito para tabulação
func (a Analysis) Delimiter() rune {
	if a.ExportDelimiter == "tab" || a.ExportDelimiter == `\t` {
		return '\t'
	}
	if utf8.RuneCountInString(a.ExportDelimiter) != 1 {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(a.ExportDelimiter)
	return r
}

type Retention struct {
	CronSchedule string `mapstructure:"retention_cron" validate:"required_if=Enabled true"`
	Days         int    `mapstructure:"retention_days" validate:"gte=1"`
	Enabled      bool   `mapstructure:"retention_enabled"`
}

// Scoring expõe os pesos do health score e a tabela de risco
type Scoring struct {
	WeightMargin      float64 `mapstructure:"health_weight_margin" validate:"gte=0,lte=1"`
	WeightBreakEven   float64 `mapstructure:"health_weight_break_even" validate:"gte=0,lte=1"`
	WeightCashFlow    float64 `mapstructure:"health_weight_cash_flow" validate:"gte=0,lte=1"`
	WeightCompetition float64 `mapstructure:"health_weight_competition" validate:"gte=0,lte=1"`
	WeightInventory   float64 `mapstructure:"health_weight_inventory" validate:"gte=0,lte=1"`

	MarginTargetPct       float64 `mapstructure:"health_margin_target_pct" validate:"gt=0"`
	BreakEvenTargetDays   float64 `mapstructure:"health_break_even_target_days" validate:"gt=0"`
	RunwayTargetMonths    float64 `mapstructure:"health_runway_target_months" validate:"gt=0"`
	CompetitionTarget     int     `mapstructure:"health_competition_target" validate:"gte=0"`
	CompetitionPenalty    float64 `mapstructure:"health_competition_penalty" validate:"gte=0"`
	TurnoverTargetDays    float64 `mapstructure:"health_turnover_target_days" validate:"gt=0"`
	LowRatingScorePenalty float64 `mapstructure:"health_low_rating_penalty" validate:"gte=0"`

	ProfitabilityGreenPct  float64 `mapstructure:"risk_profitability_green_pct" validate:"gtefield=ProfitabilityYellowPct"`
	ProfitabilityYellowPct float64 `mapstructure:"risk_profitability_yellow_pct"`
	BreakEvenGreenDays     float64 `mapstructure:"risk_break_even_green_days" validate:"gt=0"`
	BreakEvenYellowDays    float64 `mapstructure:"risk_break_even_yellow_days" validate:"gtefield=BreakEvenGreenDays"`
	RunwayGreenMonths      float64 `mapstructure:"risk_runway_green_months" validate:"gtefield=RunwayYellowMonths"`
	RunwayYellowMonths     float64 `mapstructure:"risk_runway_yellow_months" validate:"gte=0"`
	CompetitionGreenMax    int     `mapstructure:"risk_competition_green_max" validate:"gte=0"`
	CompetitionYellowMax   int     `mapstructure:"risk_competition_yellow_max" validate:"gtefield=CompetitionGreenMax"`
	CompetitionRatingMin   int     `mapstructure:"risk_competition_rating_min" validate:"gte=0"`
	LowRating              float64 `mapstructure:"risk_low_rating" validate:"gte=0,lte=5"`
	TurnoverGreenDays      float64 `mapstructure:"risk_turnover_green_days" validate:"gt=0"`
	TurnoverYellowDays     float64 `mapstructure:"risk_turnover_yellow_days" validate:"gtefield=TurnoverGreenDays"`
	HardStopRedCount       int     `mapstructure:"risk_hard_stop_red_count" validate:"gte=1,lte=5"`
}

// Thresholds converte a configuração para o formato usado pelo motor de análise
func (s Scoring) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		Weights: domain.HealthWeights{
			Margin:      s.WeightMargin,
			BreakEven:   s.WeightBreakEven,
			CashFlow:    s.WeightCashFlow,
			Competition: s.WeightCompetition,
			Inventory:   s.WeightInventory,
		},
		MarginTargetPct:       s.MarginTargetPct,
		BreakEvenTargetDays:   s.BreakEvenTargetDays,
		RunwayTargetMonths:    s.RunwayTargetMonths,
		CompetitionTarget:     s.CompetitionTarget,
		CompetitionPenalty:    s.CompetitionPenalty,
		TurnoverTargetDays:    s.TurnoverTargetDays,
		LowRatingScorePenalty: s.LowRatingScorePenalty,

		ProfitabilityGreenPct:  s.ProfitabilityGreenPct,
		ProfitabilityYellowPct: s.ProfitabilityYellowPct,
		BreakEvenGreenDays:     s.BreakEvenGreenDays,
		BreakEvenYellowDays:    s.BreakEvenYellowDays,
		RunwayGreenMonths:      s.RunwayGreenMonths,
		RunwayYellowMonths:     s.RunwayYellowMonths,
		CompetitionGreenMax:    s.CompetitionGreenMax,
		CompetitionYellowMax:   s.CompetitionYellowMax,
		CompetitionRatingMin:   s.CompetitionRatingMin,
		LowRating:              s.LowRating,
		TurnoverGreenDays:      s.TurnoverGreenDays,
		TurnoverYellowDays:     s.TurnoverYellowDays,
		HardStopRedCount:       s.HardStopRedCount,
	}
}

// NewScoring faz o caminho inverso de Thresholds
func NewScoring(t domain.Thresholds) Scoring {
	return Scoring{
		WeightMargin:      t.Weights.Margin,
		WeightBreakEven:   t.Weights.BreakEven,
		WeightCashFlow:    t.Weights.CashFlow,
		WeightCompetition: t.Weights.Competition,
		WeightInventory:   t.Weights.Inventory,

		MarginTargetPct:       t.MarginTargetPct,
		BreakEvenTargetDays:   t.BreakEvenTargetDays,
		RunwayTargetMonths:    t.RunwayTargetMonths,
		CompetitionTarget:     t.CompetitionTarget,
		CompetitionPenalty:    t.CompetitionPenalty,
		TurnoverTargetDays:    t.TurnoverTargetDays,
		LowRatingScorePenalty: t.LowRatingScorePenalty,

		ProfitabilityGreenPct:  t.ProfitabilityGreenPct,
		ProfitabilityYellowPct: t.ProfitabilityYellowPct,
		BreakEvenGreenDays:     t.BreakEvenGreenDays,
		BreakEvenYellowDays:    t.BreakEvenYellowDays,
		RunwayGreenMonths:      t.RunwayGreenMonths,
		RunwayYellowMonths:     t.RunwayYellowMonths,
		CompetitionGreenMax:    t.CompetitionGreenMax,
		CompetitionYellowMax:   t.CompetitionYellowMax,
		CompetitionRatingMin:   t.CompetitionRatingMin,
		LowRating:              t.LowRating,
		TurnoverGreenDays:      t.TurnoverGreenDays,
		TurnoverYellowDays:     t.TurnoverYellowDays,
		HardStopRedCount:       t.HardStopRedCount,
	}
}

func (s Scoring) weightSum() float64 {
	return s.WeightMargin + s.WeightBreakEven + s.WeightCashFlow + s.WeightCompetition + s.WeightInventory
}

func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", 8000)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_MB", 10)

	v.SetDefault("STORAGE_DRIVER", StoragePostgres)

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "localhost:5432/fba_portfolio?sslmode=disable")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "root")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("AUTH_ENABLED", true)
	v.SetDefault("AUTH_SECRET", "")

	v.SetDefault("ANALYSIS_MAX_ROWS", 500)
	v.SetDefault("EXPORT_DELIMITER", ",")

	v.SetDefault("RETENTION_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	v.SetDefault("RETENTION_DAYS", 30)
	v.SetDefault("RETENTION_ENABLED", true)

	d := domain.DefaultThresholds()

	v.SetDefault("HEALTH_WEIGHT_MARGIN", d.Weights.Margin)
	v.SetDefault("HEALTH_WEIGHT_BREAK_EVEN", d.Weights.BreakEven)
	v.SetDefault("HEALTH_WEIGHT_CASH_FLOW", d.Weights.CashFlow)
	v.SetDefault("HEALTH_WEIGHT_COMPETITION", d.Weights.Competition)
	v.SetDefault("HEALTH_WEIGHT_INVENTORY", d.Weights.Inventory)

	v.SetDefault("HEALTH_MARGIN_TARGET_PCT", d.MarginTargetPct)
	v.SetDefault("HEALTH_BREAK_EVEN_TARGET_DAYS", d.BreakEvenTargetDays)
	v.SetDefault("HEALTH_RUNWAY_TARGET_MONTHS", d.RunwayTargetMonths)
	v.SetDefault("HEALTH_COMPETITION_TARGET", d.CompetitionTarget)
	v.SetDefault("HEALTH_COMPETITION_PENALTY", d.CompetitionPenalty)
	v.SetDefault("HEALTH_TURNOVER_TARGET_DAYS", d.TurnoverTargetDays)
	v.SetDefault("HEALTH_LOW_RATING_PENALTY", d.LowRatingScorePenalty)

	v.SetDefault("RISK_PROFITABILITY_GREEN_PCT", d.ProfitabilityGreenPct)
	v.SetDefault("RISK_PROFITABILITY_YELLOW_PCT", d.ProfitabilityYellowPct)
	v.SetDefault("RISK_BREAK_EVEN_GREEN_DAYS", d.BreakEvenGreenDays)
	v.SetDefault("RISK_BREAK_EVEN_YELLOW_DAYS", d.BreakEvenYellowDays)
	v.SetDefault("RISK_RUNWAY_GREEN_MONTHS", d.RunwayGreenMonths)
	v.SetDefault("RISK_RUNWAY_YELLOW_MONTHS", d.RunwayYellowMonths)
	v.SetDefault("RISK_COMPETITION_GREEN_MAX", d.CompetitionGreenMax)
	v.SetDefault("RISK_COMPETITION_YELLOW_MAX", d.CompetitionYellowMax)
	v.SetDefault("RISK_COMPETITION_RATING_MIN", d.CompetitionRatingMin)
	v.SetDefault("RISK_LOW_RATING", d.LowRating)
	v.SetDefault("RISK_TURNOVER_GREEN_DAYS", d.TurnoverGreenDays)
	v.SetDefault("RISK_TURNOVER_YELLOW_DAYS", d.TurnoverYellowDays)
	v.SetDefault("RISK_HARD_STOP_RED_COUNT", d.HardStopRedCount)
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	return load(viper.GetViper())
}

// load decodifica e valida a configuração a partir de uma instância do viper
func load(v *viper.Viper) (*Config, error) {
	config := &Config{}

	err := v.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar configuração")
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate aplica as regras das tags validate e confere a soma dos pesos
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "configuração inválida")
	}

	if sum := c.Scoring.weightSum(); math.Abs(sum-1) > 1e-6 {
		return errors.Errorf("configuração inválida: pesos do health score somam %.4f, esperado 1", sum)
	}

	if d := c.Analysis.Delimiter(); d == utf8.RuneError || d == '"' || d == '\n' || d == '\r' {
		return errors.Errorf("configuração inválida: EXPORT_DELIMITER %q não pode ser usado", c.Analysis.ExportDelimiter)
	}

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
