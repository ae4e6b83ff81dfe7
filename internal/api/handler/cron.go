package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
	"github.com/vfg2006/fba-portfolio-api/pkg/log"
)

// CronJobTypeRetention é o job de remoção de análises expiradas
const CronJobTypeRetention = "retention"

// ScheduledJob é um job agendado que também pode ser disparado manualmente
type ScheduledJob interface {
	TriggerManualRun()
	GetStatus() map[string]any
}

// CronJobServices mapeia o tipo da URL para o job
type CronJobServices map[string]ScheduledJob

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")

		job, ok := services[cronType]
		if !ok || job == nil {
			apiErrors.WriteError(w, apiErrors.ErrUnknownScheduledJob, "Tipo de cron job inválido. Valores aceitos: retention", nil)
			return
		}

		log.ForContext(r.Context()).WithField("type", cronType).Info("Execução manual de cron job solicitada")
		job.TriggerManualRun()

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]any, len(services))
		for name, job := range services {
			status[name] = job.GetStatus()
		}

		writeJSON(w, r, http.StatusOK, status)
	}
}
