package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prperemyshlev/account-service/internal/config"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/repository/memory"
	"github.com/prperemyshlev/account-service/pkg/database"
	"github.com/prperemyshlev/account-service/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPhone = "01012345678"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ShutdownTimeout: config.Duration{Duration: time.Second},
		},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
		Redis: config.RedisConfig{TokenCacheTTL: config.Duration{Duration: time.Minute}},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-at-least-32-characters-long",
			AccessTokenExpiry:  config.Duration{Duration: time.Hour},
			RefreshTokenExpiry: config.Duration{Duration: 24 * time.Hour},
		},
		Security: config.SecurityConfig{BCryptCost: bcrypt.MinCost},
		Verification: config.VerificationConfig{
			CodeTTL:     config.Duration{Duration: 5 * time.Minute},
			PhoneRegion: "KR",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Env: "test",
	}
}

func newTestInfrastructure(t *testing.T, redis *database.Redis) *infrastructure {
	t.Helper()

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	require.NoError(t, err)

	infra := &infrastructure{
		store:          memory.NewStore(),
		redis:          redis,
		logger:         zap.NewNop(),
		metricsHandler: metricsHandler,
		meterProvider:  meterProvider,
	}
	t.Cleanup(func() { _ = infra.Shutdown(context.Background()) })

	return infra
}

func newTestApp(t *testing.T, infra Infrastructure) *App {
	t.Helper()

	gin.SetMode(gin.TestMode)
	application, err := NewApp(infra, testConfig())
	require.NoError(t, err)
	return application
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c *client) call(method, path, token string, body, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

// verifyPhone requests a code and verifies it, then waits so the
// verification is strictly in the past
func (c *client) verifyPhone(phone string) string {
	c.t.Helper()

	var code dto.VerificationCodeResponse
	require.Equal(c.t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/codes", "", dto.PhoneRequest{Phone: phone}, &code))
	require.Equal(c.t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/codes/"+code.Code, "", dto.PhoneRequest{Phone: phone}, nil))
	time.Sleep(time.Millisecond)
	return code.Code
}

func TestAccountLifecycle(t *testing.T) {
	application := newTestApp(t, newTestInfrastructure(t, nil))
	c := &client{t: t, router: application.Router()}

	code := c.verifyPhone(testPhone)

	register := map[string]string{
		"email":    "user@example.com",
		"password": "Password123",
		"name":     "Hong Gildong",
		"nickname": "gildong",
		"phone":    testPhone,
	}
	var registered dto.AccessTokenResponse
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/accounts", "", register, &registered))
	require.NotEmpty(t, registered.Token)

	// the code was consumed by registration
	status := c.call(http.MethodPost, "/api/v1/auth/codes/"+code, "", dto.PhoneRequest{Phone: testPhone}, nil)
	assert.Contains(t, []int{http.StatusRequestTimeout, http.StatusNotFound}, status)

	// double submission
	assert.Equal(t, http.StatusConflict, c.call(http.MethodPost, "/api/v1/auth/accounts", "", register, nil))

	var session dto.AccessTokenResponse
	login := dto.LoginRequest{ID: "user@example.com", Password: "Password123"}
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/sessions", "", login, &session))
	assert.NotEqual(t, registered.Token, session.Token)

	accountID := accountIDOf(t, session.Token)

	var profile dto.UserInformationResponse
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/user/accounts/"+accountID, session.Token, nil, &profile))
	assert.Equal(t, "+821012345678", profile.Phone)
	assert.Equal(t, "gildong", profile.Nickname)

	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/api/v1/user/accounts/"+accountID, "", nil, nil))
	assert.Equal(t, http.StatusForbidden, c.call(http.MethodGet, "/api/v1/user/accounts/someone-else", session.Token, nil, nil))

	change := dto.ChangePasswordRequest{NewPassword: "NewPassword456"}
	credentials := "/api/v1/user/accounts/" + accountID + "/credentials"
	assert.Equal(t, http.StatusForbidden, c.call(http.MethodPut, credentials, session.Token, change, nil))

	c.verifyPhone(testPhone)
	assert.Equal(t, http.StatusOK, c.call(http.MethodPut, credentials, session.Token, change, nil))
	assert.Equal(t, http.StatusForbidden, c.call(http.MethodPut, credentials, session.Token, change, nil))

	assert.Equal(t, http.StatusForbidden, c.call(http.MethodPost, "/api/v1/auth/sessions", "", login, nil))
	login.Password = "NewPassword456"
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/sessions", "", login, nil))

	// business counters are exported
	w := httptest.NewRecorder()
	application.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accounts_registered_total")
	assert.Contains(t, w.Body.String(), "logins_total")
}

func TestTokenCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	redis, err := database.NewRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)

	application := newTestApp(t, newTestInfrastructure(t, redis))
	c := &client{t: t, router: application.Router()}

	c.verifyPhone(testPhone)
	register := map[string]string{
		"email":    "user@example.com",
		"password": "Password123",
		"name":     "Hong Gildong",
		"nickname": "gildong",
		"phone":    testPhone,
	}
	var registered dto.AccessTokenResponse
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/accounts", "", register, &registered))

	accountID := accountIDOf(t, registered.Token)
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/user/accounts/"+accountID, registered.Token, nil, nil))
	assert.Len(t, mr.Keys(), 1)

	// a Redis outage falls back to the store
	mr.Close()
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/user/accounts/"+accountID, registered.Token, nil, nil))

	var health map[string]any
	w := httptest.NewRecorder()
	application.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Contains(t, health["errors"], "redis")
}

func TestHealth(t *testing.T) {
	application := newTestApp(t, newTestInfrastructure(t, nil))

	w := httptest.NewRecorder()
	application.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"pass"}`, w.Body.String())
}

// accountIDOf reads the account id a client finds in the token subject
func accountIDOf(t *testing.T, token string) string {
	t.Helper()

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	return subject
}
