package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/database/postgres"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	log.Configure(cfg.App.LogLevel)
	logrus.Info("Iniciando script de migração...")

	if cfg.Storage.Driver != config.StoragePostgres {
		logrus.Warnf("STORAGE_DRIVER=%s não usa banco, nada a migrar", cfg.Storage.Driver)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer conn.Close()

	startTime := time.Now()
	if err := postgres.Migrate(ctx, conn); err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migração")
	}

	logrus.WithField("elapsed", time.Since(startTime).String()).Info("Migração concluída com sucesso")
}
