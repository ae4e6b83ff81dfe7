// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/database/postgres"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	analysisRunsTable = "analysis_runs"
)

//go:generate mockgen -source=analysis.go -destination=mocks/mock_analysis.go -package=mocks

// AnalysisRepository guarda as execuções de análise do portfólio
type AnalysisRepository interface {
	Save(ctx context.Context, run *domain.AnalysisRun) error
	// GetByID retorna nil, nil quando a execução não existe
	GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error)
	ListIdentifiers(ctx context.Context) ([]string, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type analysisRepository struct {
	conn postgres.Queryer
}

func NewAnalysisRepository(conn postgres.Queryer) AnalysisRepository {
	return &analysisRepository{
		conn: conn,
	}
}

func (r *analysisRepository) Save(ctx context.Context, run *domain.AnalysisRun) error {
	payload, err := json.Marshal(run.AnalysisOutput)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar a análise")
	}

	query, args, err := squirrel.
		Insert(analysisRunsTable).
		Columns(
			"id",
			"created_at",
			"total_rows",
			"accepted",
			"identifiers",
			"payload",
		).
		Values(
			run.ID,
			run.CreatedAt,
			run.Report.TotalRows,
			run.Report.Accepted,
			pq.Array(run.Identifiers()),
			payload,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir query de inserção")
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "erro ao executar query de inserção")
	}

	return nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	query, args, err := squirrel.
		Select("id", "created_at", "payload").
		From(analysisRunsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query")
	}

	run := &domain.AnalysisRun{}
	var payload []byte

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao buscar análise")
	}

	if err := json.Unmarshal(payload, &run.AnalysisOutput); err != nil {
		return nil, errors.Wrapf(err, "erro ao desserializar a análise %s", id)
	}

	return run, nil
}

func (r *analysisRepository) ListIdentifiers(ctx context.Context) ([]string, error) {
	query, args, err := squirrel.
		Select("DISTINCT unnest(identifiers) AS identifier").
		From(analysisRunsTable).
		OrderBy("identifier").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query")
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query")
	}
	defer rows.Close()

	identifiers := make([]string, 0)
	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear identificador")
		}
		identifiers = append(identifiers, identifier)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de linhas")
	}

	return identifiers, nil
}

func (r *analysisRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := squirrel.
		Delete(analysisRunsTable).
		Where(squirrel.Lt{"created_at": before}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao construir query de remoção")
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "erro ao executar query de remoção")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao contar análises removidas")
	}

	return deleted, nil
}
