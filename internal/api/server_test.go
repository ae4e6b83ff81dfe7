package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/fba-portfolio-api/internal/api/handler"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/portfolio/mocks"
	"github.com/vfg2006/fba-portfolio-api/pkg/middleware"
	"go.uber.org/mock/gomock"
)

const testSecret = "segredo-de-teste"

func testConfig(authEnabled bool) *config.Config {
	return &config.Config{
		Server: config.Server{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    1,
		},
		Auth: config.Auth{
			Enabled: authEnabled,
			Secret:  testSecret,
		},
	}
}

func bearer(t *testing.T, roleID int) string {
	t.Helper()
	claims := domain.Claims{
		UserID:     7,
		UserEmail:  "usuario@exemplo.com",
		UserRoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name           string
		authEnabled    bool
		method         string
		path           string
		roleID         int // 0 envia sem token
		expectedStatus int
	}{
		{
			name:           "healthcheck é público",
			authEnabled:    true,
			method:         http.MethodGet,
			path:           "/healthcheck",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "análise exige token",
			authEnabled:    true,
			method:         http.MethodPost,
			path:           "/v1/analyses",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "viewer não cria análise",
			authEnabled:    true,
			method:         http.MethodPost,
			path:           "/v1/analyses",
			roleID:         middleware.RoleViewer,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "analista não acessa cron",
			authEnabled:    true,
			method:         http.MethodGet,
			path:           "/v1/cron/status",
			roleID:         middleware.RoleAnalyst,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin consulta cron",
			authEnabled:    true,
			method:         http.MethodGet,
			path:           "/v1/cron/status",
			roleID:         middleware.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "sem autenticação as rotas ficam abertas",
			method:         http.MethodGet,
			path:           "/v1/cron/status",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rota inexistente",
			method:         http.MethodGet,
			path:           "/v1/desconhecida",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "método não permitido",
			method:         http.MethodDelete,
			path:           "/v1/analyses",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "preflight de CORS",
			authEnabled:    true,
			method:         http.MethodOptions,
			path:           "/v1/analyses",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h := NewHandler(testConfig(tt.authEnabled), mocks.NewMockService(ctrl), nil, handler.CronJobServices{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			req.Header.Set("Origin", "http://localhost:3000")
			if tt.roleID != 0 {
				req.Header.Set("Authorization", bearer(t, tt.roleID))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
		})
	}
}
