package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// schema cria as tabelas usadas pelo repositório de análises; pode rodar mais de uma vez
var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id          TEXT PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL,
		total_rows  INTEGER NOT NULL,
		accepted    INTEGER NOT NULL,
		identifiers TEXT[] NOT NULL DEFAULT '{}',
		payload     JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_identifiers_idx ON analysis_runs USING GIN (identifiers)`,
}

// Migrate aplica o schema em uma única transação
func Migrate(ctx context.Context, conn Conn) error {
	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, statement := range schema {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return errors.Wrapf(err, "erro ao aplicar o passo %d do schema", i+1)
			}
		}
		return nil
	})
}
