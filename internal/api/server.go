package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/fba-portfolio-api/internal/api/handler"
	"github.com/vfg2006/fba-portfolio-api/internal/api/handler/router"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/portfolio"
	"github.com/vfg2006/fba-portfolio-api/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func New(
	cfg *config.Config,
	portfolioService portfolio.Service,
	pinger handler.Pinger,
	cronServices handler.CronJobServices,
) (*Server, error) {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			Handler:           NewHandler(cfg, portfolioService, pinger, cronServices),
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
	}, nil
}

// NewHandler monta o roteador com a cadeia de middlewares globais
func NewHandler(
	cfg *config.Config,
	portfolioService portfolio.Service,
	pinger handler.Pinger,
	cronServices handler.CronJobServices,
) http.Handler {
	maxUploadBytes := cfg.Server.MaxUploadMB << 20

	rt := router.New(
		router.WithRoutes(handler.Healthcheck(pinger)...),
		router.WithRoutes(handler.Analyses(portfolioService, maxUploadBytes, cfg.Auth.Enabled)...),
		router.WithRoutes(handler.CronJobs(cronServices, cfg.Auth.Enabled)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(cfg.Server.AllowedOrigins),
	}
	if cfg.Auth.Enabled {
		middlewares = append(middlewares, middleware.AuthMiddleware(cfg.Auth.Secret))
	} else {
		logrus.Warn("Autenticação desabilitada (AUTH_ENABLED=false)")
	}

	return alice.New(middlewares...).Then(rt)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}
