// Package portfolio coordena o motor de análise e o armazenamento das execuções
package portfolio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vfg2006/fba-portfolio-api/infrastructure/repository"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/aggregating"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/analyzing"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
	"github.com/vfg2006/fba-portfolio-api/pkg/log"
	"github.com/vfg2006/fba-portfolio-api/pkg/utils"
)

// Format é o formato de exportação de uma análise
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat aceita "csv" e "xlsx"; vazio equivale a csv
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ContentType retorna o tipo MIME do formato
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

type AnalyzeRequest struct {
	Rows                []domain.RawRow `json:"rows"`
	ExistingIdentifiers []string        `json:"existing_identifiers"`
}

// ViewOptions ordena e filtra os resultados de uma análise.
// O resumo continua sendo o do lote inteiro.
type ViewOptions struct {
	SortBy     string
	Descending bool
	Tier       domain.RiskTier // Vazio mantém todos
}

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks
type Service interface {
	Analyze(ctx context.Context, request AnalyzeRequest) (*domain.AnalysisRun, error)
	GetRun(ctx context.Context, id string, opts ViewOptions) (*domain.AnalysisRun, error)
	Export(ctx context.Context, id string, format Format, opts ViewOptions, w io.Writer) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type service struct {
	repository repository.AnalysisRepository
	engine     *analyzing.Engine
	delimiter  rune
	now        func() time.Time
	generateID func() (string, error)
}

func NewService(analysisRepository repository.AnalysisRepository, cfg *config.Config) Service {
	return &service{
		repository: analysisRepository,
		engine:     analyzing.NewEngine(cfg.Analysis.MaxRows, cfg.Scoring.Thresholds()),
		delimiter:  cfg.Analysis.Delimiter(),
		now:        time.Now,
		generateID: utils.GenerateID,
	}
}

// Analyze roda o pipeline sobre o lote e grava a execução.
// Os identificadores já armazenados entram na checagem de duplicados.
// Um lote rejeitado não é gravado: retorna a execução (sem ID) junto com ErrBatchRejected.
func (s *service) Analyze(ctx context.Context, request AnalyzeRequest) (*domain.AnalysisRun, error) {
	logger := log.ForContext(ctx)

	if len(request.Rows) == 0 {
		return nil, NewAnalysisError(ErrEmptyBatch, apiErrors.ErrMissingRequiredData, "Envie ao menos uma linha de produto")
	}

	known, err := s.repository.ListIdentifiers(ctx)
	if err != nil {
		logger.WithError(err).Error("Erro ao listar identificadores armazenados")
		return nil, NewAnalysisError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao consultar produtos já analisados")
	}

	existing := make([]string, 0, len(known)+len(request.ExistingIdentifiers))
	existing = append(existing, known...)
	existing = append(existing, request.ExistingIdentifiers...)

	output := s.engine.Run(request.Rows, existing)
	run := &domain.AnalysisRun{
		CreatedAt:      s.now().UTC(),
		AnalysisOutput: output,
	}

	if output.Report.Rejected {
		logger.WithFields(log.Fields{
			"rows": output.Report.TotalRows,
		}).Warn("Lote rejeitado pelo limite de linhas")
		return run, NewAnalysisError(ErrBatchRejected, apiErrors.ErrBatchRejected, output.Report.Errors[0].Message)
	}

	run.ID, err = s.generateID()
	if err != nil {
		logger.WithError(err).Error("Erro ao gerar ID da análise")
		return nil, NewAnalysisError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar o ID da análise")
	}

	if err := s.repository.Save(ctx, run); err != nil {
		logger.WithError(err).Error("Erro ao gravar análise")
		return nil, NewAnalysisErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, run.ID, "Falha ao gravar a análise")
	}

	logger.WithFields(log.Fields{
		"analysis_id": run.ID,
		"rows":        output.Report.TotalRows,
		"accepted":    output.Report.Accepted,
		"errors":      len(output.Report.Errors),
		"warnings":    len(output.Report.Warnings),
		"duplicates":  len(output.Report.Duplicates),
	}).Info("Análise concluída")

	return run, nil
}

// GetRun retorna a execução com os resultados ordenados e filtrados
func (s *service) GetRun(ctx context.Context, id string, opts ViewOptions) (*domain.AnalysisRun, error) {
	if err := validateView(opts); err != nil {
		return nil, err
	}

	run, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	results, err := applyView(run.Results, opts)
	if err != nil {
		return nil, err
	}
	run.Results = results

	return run, nil
}

// Export grava os resultados da execução no formato pedido, respeitando a visão
func (s *service) Export(ctx context.Context, id string, format Format, opts ViewOptions, w io.Writer) error {
	if _, ok := ParseFormat(string(format)); !ok {
		return NewAnalysisError(ErrInvalidFormat, apiErrors.ErrUnsupportedExport, fmt.Sprintf("Formato %q não suportado, use csv ou xlsx", format))
	}

	run, err := s.GetRun(ctx, id, opts)
	if err != nil {
		return err
	}

	if format == FormatXLSX {
		err = aggregating.WriteXLSX(w, run.Results)
	} else {
		err = aggregating.WriteCSV(w, run.Results, s.delimiter)
	}
	if err != nil {
		log.ForContext(ctx).WithError(err).WithField("analysis_id", id).Error("Erro ao exportar análise")
		return NewAnalysisErrorWithID(ErrExport, apiErrors.ErrInternalServer, id, err.Error())
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"analysis_id": id,
		"format":      format,
		"rows":        len(run.Results),
	}).Info("Análise exportada")

	return nil
}

// PurgeExpired remove as execuções criadas antes de before
func (s *service) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := s.repository.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, NewAnalysisError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao remover análises expiradas")
	}
	return deleted, nil
}

func (s *service) load(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	if !utils.IsValidID(id) {
		return nil, NewAnalysisErrorWithID(ErrInvalidAnalysisID, apiErrors.ErrInvalidRequest, id, "ID de análise inválido")
	}

	run, err := s.repository.GetByID(ctx, id)
	if err != nil {
		log.ForContext(ctx).WithError(err).WithField("analysis_id", id).Error("Erro ao buscar análise")
		return nil, NewAnalysisErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, "Falha ao buscar a análise")
	}
	if run == nil {
		return nil, NewAnalysisErrorWithID(ErrAnalysisNotFound, apiErrors.ErrAnalysisNotFound, id, "Análise não encontrada ou expirada")
	}

	return run, nil
}

func validateView(opts ViewOptions) error {
	if opts.SortBy != "" && !aggregating.IsSortField(opts.SortBy) {
		return NewAnalysisError(ErrInvalidSortField, apiErrors.ErrInvalidSortField, fmt.Sprintf("Campo de ordenação %q desconhecido", opts.SortBy))
	}
	if opts.Tier != "" {
		if _, ok := domain.ParseRiskTier(string(opts.Tier)); !ok {
			return NewAnalysisError(ErrInvalidTier, apiErrors.ErrInvalidTier, fmt.Sprintf("Tier %q desconhecido, use healthy, warning ou critical", opts.Tier))
		}
	}
	return nil
}

func applyView(results []domain.ProductResult, opts ViewOptions) ([]domain.ProductResult, error) {
	if opts.Tier != "" {
		results = aggregating.FilterByTier(results, opts.Tier)
	}

	sorted, err := aggregating.SortResults(results, opts.SortBy, opts.Descending)
	if err != nil {
		return nil, NewAnalysisError(ErrInvalidSortField, apiErrors.ErrInvalidSortField, err.Error())
	}

	return sorted, nil
}
