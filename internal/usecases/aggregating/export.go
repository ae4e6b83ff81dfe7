package aggregating

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidDelimiter    = errors.New("delimitador de exportação inválido")
	ErrInvalidExportHeader = errors.New("cabeçalho da exportação não confere")
)

// DefaultDelimiter é a vírgula; ';' atende o Excel em localidades europeias
const DefaultDelimiter = ','

// ExportSheet é o nome da planilha no arquivo xlsx
const ExportSheet = "Portfolio"

// Casas decimais por tipo de coluna; contagens saem como inteiros
const (
	currencyPlaces = 2
	ratioPlaces    = 1
)

// ExportColumns é a ordem fixa das colunas exportadas
var ExportColumns = []string{
	"identifier",
	"name",
	"category",
	"price",
	"cost",
	"velocity",
	"profitPerUnit",
	"profitMarginPct",
	"totalMonthlyProfit",
	"breakEvenDays",
	"cashRunwayMonths",
	"turnoverDays",
	"healthScore",
	"profitabilityRisk",
	"breakEvenRisk",
	"cashFlowRisk",
	"competitionRisk",
	"inventoryRisk",
	"criticalRiskCount",
	"returnRatePct",
	"competitorCount",
	"averageRating",
}

// ExportRow é a linha plana já arredondada na precisão de exportação.
// Medidas finitas a partir de 999 viram ilimitadas, como o sentinela legado.
type ExportRow struct {
	Identifier         string
	Name               string
	Category           string
	Price              decimal.Decimal
	Cost               decimal.Decimal
	Velocity           decimal.Decimal
	ProfitPerUnit      decimal.Decimal
	ProfitMarginPct    decimal.Decimal
	TotalMonthlyProfit decimal.Decimal
	BreakEvenDays      domain.Measure
	CashRunwayMonths   domain.Measure
	TurnoverDays       domain.Measure
	HealthScore        decimal.Decimal
	Risks              [5]domain.RiskLevel // Na ordem de domain.RiskCategories
	CriticalRiskCount  int
	ReturnRatePct      decimal.Decimal
	CompetitorCount    int
	AverageRating      decimal.Decimal
}

// ToExportRow achata um resultado aplicando a precisão de cada coluna
func ToExportRow(r domain.ProductResult) ExportRow {
	row := ExportRow{
		Identifier:         r.Product.Identifier,
		Name:               r.Product.Name,
		Category:           r.Product.Category,
		Price:              fixed(r.Product.Price, currencyPlaces),
		Cost:               fixed(r.Product.CostPerUnit, currencyPlaces),
		Velocity:           fixed(r.Product.MonthlyVelocity, ratioPlaces),
		ProfitPerUnit:      fixed(r.Metrics.ProfitPerUnit, currencyPlaces),
		ProfitMarginPct:    fixed(r.Metrics.ProfitMarginPct, ratioPlaces),
		TotalMonthlyProfit: fixed(r.Metrics.TotalMonthlyProfit, currencyPlaces),
		BreakEvenDays:      fixedMeasure(r.Metrics.BreakEvenDays),
		CashRunwayMonths:   fixedMeasure(r.CashFlow.RunwayMonths),
		TurnoverDays:       fixedMeasure(r.Metrics.TurnoverDays),
		HealthScore:        fixed(r.Metrics.HealthScore, ratioPlaces),
		CriticalRiskCount:  r.Risk.CriticalCount,
		ReturnRatePct:      fixed(r.Product.ReturnRatePct, ratioPlaces),
		CompetitorCount:    r.Product.CompetitorCount,
		AverageRating:      fixed(r.Product.AverageRating, ratioPlaces),
	}
	for i, category := range domain.RiskCategories {
		row.Risks[i] = r.Risk.Level(category)
	}
	return row
}

// Record retorna os campos da linha como texto, na ordem de ExportColumns
func (row ExportRow) Record() []string {
	record := []string{
		row.Identifier,
		row.Name,
		row.Category,
		row.Price.StringFixed(currencyPlaces),
		row.Cost.StringFixed(currencyPlaces),
		row.Velocity.StringFixed(ratioPlaces),
		row.ProfitPerUnit.StringFixed(currencyPlaces),
		row.ProfitMarginPct.StringFixed(ratioPlaces),
		row.TotalMonthlyProfit.StringFixed(currencyPlaces),
		measureText(row.BreakEvenDays),
		measureText(row.CashRunwayMonths),
		measureText(row.TurnoverDays),
		row.HealthScore.StringFixed(ratioPlaces),
	}
	for _, level := range row.Risks {
		record = append(record, string(level))
	}
	return append(record,
		strconv.Itoa(row.CriticalRiskCount),
		row.ReturnRatePct.StringFixed(ratioPlaces),
		strconv.Itoa(row.CompetitorCount),
		row.AverageRating.StringFixed(ratioPlaces),
	)
}

// WriteCSV grava cabeçalho e linhas com o delimitador informado.
// Campos com delimitador, aspas ou quebra de linha saem entre aspas, com aspas duplicadas.
func WriteCSV(w io.Writer, results []domain.ProductResult, delimiter rune) error {
	if !validDelimiter(delimiter) {
		return ErrInvalidDelimiter
	}

	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := writer.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range results {
		if err := writer.Write(ToExportRow(r).Record()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX grava as mesmas colunas em uma planilha; números saem como células numéricas
func WriteXLSX(w io.Writer, results []domain.ProductResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(ExportColumns))
	for i, column := range ExportColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := xlsxValues(ToExportRow(r))
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func xlsxValues(row ExportRow) []interface{} {
	values := []interface{}{
		row.Identifier,
		row.Name,
		row.Category,
		row.Price.InexactFloat64(),
		row.Cost.InexactFloat64(),
		row.Velocity.InexactFloat64(),
		row.ProfitPerUnit.InexactFloat64(),
		row.ProfitMarginPct.InexactFloat64(),
		row.TotalMonthlyProfit.InexactFloat64(),
		row.BreakEvenDays.OrSentinel(),
		row.CashRunwayMonths.OrSentinel(),
		row.TurnoverDays.OrSentinel(),
		row.HealthScore.InexactFloat64(),
	}
	for _, level := range row.Risks {
		values = append(values, string(level))
	}
	return append(values,
		row.CriticalRiskCount,
		row.ReturnRatePct.InexactFloat64(),
		row.CompetitorCount,
		row.AverageRating.InexactFloat64(),
	)
}

// ReadExport interpreta um CSV gerado por WriteCSV
func ReadExport(r io.Reader, delimiter rune) ([]ExportRow, error) {
	if !validDelimiter(delimiter) {
		return nil, ErrInvalidDelimiter
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = len(ExportColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, column := range ExportColumns {
		if header[i] != column {
			return nil, ErrInvalidExportHeader
		}
	}

	rows := make([]ExportRow, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("linha %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(record []string) (ExportRow, error) {
	p := &recordParser{record: record}

	row := ExportRow{
		Identifier:         record[0],
		Name:               record[1],
		Category:           record[2],
		Price:              p.decimal(3),
		Cost:               p.decimal(4),
		Velocity:           p.decimal(5),
		ProfitPerUnit:      p.decimal(6),
		ProfitMarginPct:    p.decimal(7),
		TotalMonthlyProfit: p.decimal(8),
		BreakEvenDays:      p.measure(9),
		CashRunwayMonths:   p.measure(10),
		TurnoverDays:       p.measure(11),
		HealthScore:        p.decimal(12),
		CriticalRiskCount:  p.integer(18),
		ReturnRatePct:      p.decimal(19),
		CompetitorCount:    p.integer(20),
		AverageRating:      p.decimal(21),
	}
	for i := range row.Risks {
		row.Risks[i] = p.level(13 + i)
	}

	return row, p.err
}

// recordParser guarda o primeiro erro encontrado ao ler as colunas
type recordParser struct {
	record []string
	err    error
}

func (p *recordParser) fail(index int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("coluna %s: %w", ExportColumns[index], err)
	}
}

func (p *recordParser) decimal(index int) decimal.Decimal {
	d, err := decimal.NewFromString(p.record[index])
	if err != nil {
		p.fail(index, err)
	}
	return d
}

func (p *recordParser) measure(index int) domain.Measure {
	return domain.MeasureFromSentinel(p.decimal(index).InexactFloat64())
}

func (p *recordParser) integer(index int) int {
	v, err := strconv.Atoi(p.record[index])
	if err != nil {
		p.fail(index, err)
	}
	return v
}

func (p *recordParser) level(index int) domain.RiskLevel {
	level := domain.RiskLevel(p.record[index])
	switch level {
	case domain.RiskGreen, domain.RiskYellow, domain.RiskRed:
		return level
	}
	p.fail(index, fmt.Errorf("nível de risco %q", p.record[index]))
	return ""
}

// fixed arredonda na precisão da coluna; NaN e ±Inf saem como zero em vez de derrubar a exportação
func fixed(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

func fixedMeasure(m domain.Measure) domain.Measure {
	v, ok := m.Value()
	if !ok {
		return m
	}
	return domain.MeasureFromSentinel(fixed(v, ratioPlaces).InexactFloat64())
}

func measureText(m domain.Measure) string {
	return decimal.NewFromFloat(m.OrSentinel()).StringFixed(ratioPlaces)
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}
