package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/fba-portfolio-api/internal/api/handler/router"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
)

type fakeJob struct {
	triggered int
	status    map[string]any
}

func (f *fakeJob) TriggerManualRun() {
	f.triggered++
}

func (f *fakeJob) GetStatus() map[string]any {
	return f.status
}

func TestRunCronJob(t *testing.T) {
	tests := []struct {
		name           string
		jobType        string
		expectedStatus int
		expectedRuns   int
	}{
		{
			name:           "dispara retenção",
			jobType:        CronJobTypeRetention,
			expectedStatus: http.StatusAccepted,
			expectedRuns:   1,
		},
		{
			name:           "tipo desconhecido",
			jobType:        "meta",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &fakeJob{}
			rt := router.New(router.WithRoutes(router.Route{
				Path:    "/v1/cron/:type/run",
				Method:  http.MethodPost,
				Handler: RunCronJob(CronJobServices{CronJobTypeRetention: job}),
			}))

			req := httptest.NewRequest(http.MethodPost, "/v1/cron/"+tt.jobType+"/run", nil)
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedRuns, job.triggered)
			if tt.expectedStatus == http.StatusNotFound {
				assert.Equal(t, apiErrors.ErrUnknownScheduledJob, decodeAPIError(t, rec.Body).Code)
			}
		})
	}
}

func TestGetCronStatus(t *testing.T) {
	job := &fakeJob{status: map[string]any{"enabled": true, "retention_days": 30}}

	rec := httptest.NewRecorder()
	GetCronStatus(CronJobServices{CronJobTypeRetention: job}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body[CronJobTypeRetention]["enabled"])
	assert.EqualValues(t, 30, body[CronJobTypeRetention]["retention_days"])
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func TestHealthcheckHandler(t *testing.T) {
	tests := []struct {
		name           string
		pinger         Pinger
		expectedStatus int
	}{
		{
			name:           "sem banco",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "banco disponível",
			pinger:         pingerFunc(func(ctx context.Context) error { return nil }),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "banco indisponível",
			pinger:         pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthcheckHandler(tt.pinger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
