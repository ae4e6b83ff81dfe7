package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
)

const testSecret = "segredo-de-teste"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, roleID int, expiresIn time.Duration) string {
	t.Helper()
	claims := domain.Claims{
		UserID:     42,
		UserEmail:  "analista@exemplo.com",
		UserRoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Healthcheck é público",
			path:       "/healthcheck",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "Token válido",
			path:       "/v1/analyses",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, RoleAnalyst, time.Hour),
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "Sem cabeçalho",
			path:       "/v1/analyses",
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrInvalidToken,
		},
		{
			name:       "Sem prefixo Bearer",
			path:       "/v1/analyses",
			header:     signToken(t, jwt.SigningMethodHS256, testSecret, RoleAnalyst, time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrInvalidToken,
		},
		{
			name:       "Assinado com outro segredo",
			path:       "/v1/analyses",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, "outro", RoleAnalyst, time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrInvalidToken,
		},
		{
			name:       "Token expirado",
			path:       "/v1/analyses",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, RoleAnalyst, -time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrExpiredToken,
		},
	}

	handler := AuthMiddleware(testSecret)(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		roleID     int
		wantStatus int
	}{
		{name: "Administrador acessa", roleID: RoleAdmin, wantStatus: http.StatusNoContent},
		{name: "Analista bloqueado", roleID: RoleAnalyst, wantStatus: http.StatusForbidden},
		{name: "Leitor bloqueado", roleID: RoleViewer, wantStatus: http.StatusForbidden},
	}

	handler := AuthMiddleware(testSecret)(AdminOnly()(okHandler()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/cron/retention/run", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, tt.roleID, time.Hour))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("Sem autenticação", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminOnly()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(okHandler())

	t.Run("Origem permitida", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/x", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Origem desconhecida", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/x", nil)
		req.Header.Set("Origin", "https://malicioso.exemplo")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/analyses", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoggingMiddleware_CorrelationID(t *testing.T) {
	handler := LoggingMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(CorrelationIDHeader, "3f0c2c52-7a57-4a0e-9a39-0c8d7a1f3b11")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "3f0c2c52-7a57-4a0e-9a39-0c8d7a1f3b11", rec.Header().Get(CorrelationIDHeader))
}

func TestLoggingMiddleware_Status(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel logrus.Level
	}{
		{name: "Sucesso em info", status: http.StatusOK, expectedLevel: logrus.InfoLevel},
		{name: "Erro do cliente em warn", status: http.StatusNotFound, expectedLevel: logrus.WarnLevel},
		{name: "Erro do servidor em error", status: http.StatusInternalServerError, expectedLevel: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := test.NewGlobal()
			defer hook.Reset()

			handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analyses/x", nil))

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, tt.status, entry.Data["status_code"])
		})
	}
}

func TestLogPanicMiddleware(t *testing.T) {
	handler := LogPanicMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("falha inesperada")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apiErrors.ErrInternalServer)
}
