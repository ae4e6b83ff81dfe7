package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/database/postgres"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/repository"
	"github.com/vfg2006/fba-portfolio-api/internal/api"
	"github.com/vfg2006/fba-portfolio-api/internal/api/handler"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/internal/scheduler"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/portfolio"
	"github.com/vfg2006/fba-portfolio-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	level, ok := log.Configure(cfg.App.LogLevel)
	if !ok {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
	}
	logrus.Infof("Nível de log configurado para: %s", level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		analysisRepo repository.AnalysisRepository
		pinger       handler.Pinger
	)

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logrus.Warn("Usando armazenamento em memória: as análises se perdem ao reiniciar")
		analysisRepo = repository.NewMemoryAnalysisRepository()
	default:
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		analysisRepo = repository.NewAnalysisRepository(pgConn)
		pinger = pgConn
	}

	portfolioService := portfolio.NewService(analysisRepo, cfg)

	retentionService := scheduler.NewRetentionService(portfolioService, cfg)
	if err := retentionService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de retenção de análises")
	} else {
		logrus.Info("Agendador de retenção de análises iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		portfolioService,
		pinger,
		handler.CronJobServices{
			handler.CronJobTypeRetention: retentionService,
		},
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
