package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/fba-portfolio-api/pkg/log"
)

// Pinger verifica se o armazenamento está acessível
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthcheckHandler responde 200 com o horário atual; 503 quando o banco não responde.
// pinger nil (armazenamento em memória) sempre responde 200.
func HealthcheckHandler(pinger Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				log.ForContext(r.Context()).WithError(err).Warn("Banco indisponível no healthcheck")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unavailable"))
				return
			}
		}

		if _, err := w.Write([]byte(time.Now().Format(time.RFC3339))); err != nil {
			log.L.WithError(err).Warn("error responding to healthcheck")
		}
	})
}
