package handler

import (
	"net/http"

	"github.com/vfg2006/fba-portfolio-api/internal/api/handler/router"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/portfolio"
	"github.com/vfg2006/fba-portfolio-api/pkg/middleware"
)

func Healthcheck(pinger Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(pinger),
		},
	}
}

// Analyses registra as rotas de análise. Sem autenticação os middlewares de role ficam de fora.
func Analyses(service portfolio.Service, maxUploadBytes int64, authEnabled bool) []router.Route {
	write := roles(authEnabled, middleware.Analysts())
	read := roles(authEnabled, middleware.AllRoles())

	return []router.Route{
		{
			Path:        "/v1/analyses",
			Method:      http.MethodPost,
			Handler:     AnalyzeRows(service),
			Middlewares: write,
		},
		{
			Path:        "/v1/analyses/upload",
			Method:      http.MethodPost,
			Handler:     UploadAnalysis(service, maxUploadBytes),
			Middlewares: write,
		},
		{
			Path:        "/v1/analyses/:id",
			Method:      http.MethodGet,
			Handler:     GetAnalysis(service),
			Middlewares: read,
		},
		{
			Path:        "/v1/analyses/:id/export",
			Method:      http.MethodGet,
			Handler:     ExportAnalysis(service),
			Middlewares: read,
		},
	}
}

// CronJobs expõe as jobs agendadas apenas para administradores
func CronJobs(services CronJobServices, authEnabled bool) []router.Route {
	admin := roles(authEnabled, middleware.AdminOnly())

	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: admin,
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: admin,
		},
	}
}

func roles(authEnabled bool, mw func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	if !authEnabled {
		return nil
	}
	return []func(http.Handler) http.Handler{mw}
}
