package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerification struct {
	code     string
	err      error
	gotCode  string
	gotPhone string
}

func (s *stubVerification) RequestCode(_ context.Context, phone string) (string, error) {
	s.gotPhone = phone
	return s.code, s.err
}

func (s *stubVerification) VerifyCode(_ context.Context, code, phone string) error {
	s.gotCode, s.gotPhone = code, phone
	return s.err
}

type stubAccounts struct {
	token       *domain.AccessToken
	account     *domain.Account
	err         error
	gotID       string
	gotPassword string
}

func (s *stubAccounts) Register(_ context.Context, req *dto.RegisterRequest) (*domain.AccessToken, error) {
	s.gotPassword = req.Password
	return s.token, s.err
}

func (s *stubAccounts) Login(_ context.Context, req *dto.LoginRequest) (*domain.AccessToken, error) {
	s.gotID = req.ID
	return s.token, s.err
}

func (s *stubAccounts) GetUserInformation(_ context.Context, accountID string) (*domain.Account, error) {
	s.gotID = accountID
	return s.account, s.err
}

func (s *stubAccounts) ChangePassword(_ context.Context, accountID, newPassword string) error {
	s.gotID, s.gotPassword = accountID, newPassword
	return s.err
}

type stubAuthenticator map[string]string

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	if accountID, ok := s[token]; ok {
		return accountID, nil
	}
	return "", fmt.Errorf("%w: unknown token", service.ErrUnauthorized)
}

func newTestRouter(verification *stubVerification, accounts *stubAccounts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	authHandler := NewAuthHandler(verification, accounts, logger)
	userHandler := NewUserHandler(accounts, logger)

	router := gin.New()
	router.POST("/auth/codes", authHandler.RequestCode)
	router.POST("/auth/codes/:code", authHandler.VerifyCode)
	router.POST("/auth/accounts", authHandler.Register)
	router.POST("/auth/sessions", authHandler.Login)

	user := router.Group("/user", AuthMiddleware(stubAuthenticator{"good-token": "account-1"}, logger))
	user.GET("/accounts/:accountId", userHandler.GetUserInformation)
	user.PUT("/accounts/:accountId/credentials", userHandler.ChangePassword)

	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestRequestCode(t *testing.T) {
	verification := &stubVerification{code: "123456"}
	router := newTestRouter(verification, &stubAccounts{})

	w := do(t, router, http.MethodPost, "/auth/codes", dto.PhoneRequest{Phone: "01012345678"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"123456"}`, w.Body.String())
	assert.Equal(t, "01012345678", verification.gotPhone)

	w = do(t, router, http.MethodPost, "/auth/codes", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCode_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: http.StatusOK},
		{err: service.ErrBadRequest, want: http.StatusBadRequest},
		{err: service.ErrNotFound, want: http.StatusNotFound},
		{err: service.ErrRequestTimeout, want: http.StatusRequestTimeout},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.want), func(t *testing.T) {
			verification := &stubVerification{err: tt.err}
			router := newTestRouter(verification, &stubAccounts{})

			w := do(t, router, http.MethodPost, "/auth/codes/123456", dto.PhoneRequest{Phone: "01012345678"}, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "123456", verification.gotCode)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestRegister(t *testing.T) {
	expiresAt := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	accounts := &stubAccounts{token: &domain.AccessToken{
		Token:        "token",
		RefreshToken: "refresh",
		ExpiresAt:    expiresAt,
		AccountID:    "account-1",
	}}
	router := newTestRouter(&stubVerification{}, accounts)

	body := map[string]string{
		"email":    "user@example.com",
		"password": "Password123",
		"name":     "Hong Gildong",
		"nickname": "gildong",
		"phone":    "01012345678",
	}
	w := do(t, router, http.MethodPost, "/auth/accounts", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"token","refreshToken":"refresh","expiresAt":"2024-05-08T12:00:00Z"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "account-1")
}

func TestRegister_FieldErrors(t *testing.T) {
	phone := "WrongNumber"
	email := "user@example.com"

	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{
			name: "bad phone",
			err:  &service.FieldError{Kind: service.ErrBadRequest, Phone: &phone},
			want: http.StatusBadRequest,
			body: `{"phone":"WrongNumber","email":null}`,
		},
		{
			name: "taken email",
			err:  &service.FieldError{Kind: service.ErrConflict, Email: &email},
			want: http.StatusConflict,
			body: `{"phone":null,"email":"user@example.com"}`,
		},
		{
			name: "unverified phone",
			err:  fmt.Errorf("%w: phone is not verified", service.ErrForbidden),
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubVerification{}, &stubAccounts{err: tt.err})

			body := map[string]string{"password": "p", "name": "n", "nickname": "n"}
			w := do(t, router, http.MethodPost, "/auth/accounts", body, nil)
			assert.Equal(t, tt.want, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestLogin(t *testing.T) {
	accounts := &stubAccounts{token: &domain.AccessToken{Token: "token", RefreshToken: "refresh"}}
	router := newTestRouter(&stubVerification{}, accounts)

	w := do(t, router, http.MethodPost, "/auth/sessions", dto.LoginRequest{ID: "user@example.com", Password: "p"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user@example.com", accounts.gotID)

	accounts.err = fmt.Errorf("%w: wrong password", service.ErrForbidden)
	w = do(t, router, http.MethodPost, "/auth/sessions", dto.LoginRequest{ID: "user@example.com", Password: "p"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	accounts.err = fmt.Errorf("%w: no such account", service.ErrUnauthorized)
	w = do(t, router, http.MethodPost, "/auth/sessions", dto.LoginRequest{ID: "user@example.com", Password: "p"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	accounts := &stubAccounts{account: &domain.Account{Name: "Hong Gildong", Phone: "+821012345678"}}
	router := newTestRouter(&stubVerification{}, accounts)

	tests := []struct {
		name   string
		header http.Header
		want   int
	}{
		{name: "no header", header: nil, want: http.StatusUnauthorized},
		{name: "wrong scheme", header: http.Header{"Authorization": []string{"Basic good-token"}}, want: http.StatusUnauthorized},
		{name: "missing parameter", header: http.Header{"Authorization": []string{"Bearer "}}, want: http.StatusUnauthorized},
		{name: "unknown token", header: bearer("bad-token"), want: http.StatusUnauthorized},
		{name: "token with whitespace", header: http.Header{"Authorization": []string{"Bearer good-token extra"}}, want: http.StatusUnauthorized},
		{name: "lowercase scheme", header: http.Header{"Authorization": []string{"bearer good-token"}}, want: http.StatusOK},
		{name: "valid", header: bearer("good-token"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/user/accounts/account-1", nil, tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetUserInformation(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	accounts := &stubAccounts{account: &domain.Account{
		ID:        "account-1",
		Name:      "Hong Gildong",
		Nickname:  "gildong",
		Phone:     "+821012345678",
		Email:     "user@example.com",
		CreatedAt: createdAt,
	}}
	router := newTestRouter(&stubVerification{}, accounts)

	w := do(t, router, http.MethodGet, "/user/accounts/account-1", nil, bearer("good-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"name": "Hong Gildong",
		"nickname": "gildong",
		"phone": "+821012345678",
		"email": "user@example.com",
		"createdAt": "2024-05-01T12:00:00Z"
	}`, w.Body.String())

	// another account's profile
	w = do(t, router, http.MethodGet, "/user/accounts/account-2", nil, bearer("good-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChangePassword(t *testing.T) {
	accounts := &stubAccounts{}
	router := newTestRouter(&stubVerification{}, accounts)
	body := dto.ChangePasswordRequest{NewPassword: "NewPassword456"}

	w := do(t, router, http.MethodPut, "/user/accounts/account-1/credentials", body, bearer("good-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "account-1", accounts.gotID)
	assert.Equal(t, "NewPassword456", accounts.gotPassword)

	w = do(t, router, http.MethodPut, "/user/accounts/account-2/credentials", body, bearer("good-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPut, "/user/accounts/account-1/credentials", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	accounts.err = fmt.Errorf("%w: phone is not verified", service.ErrForbidden)
	w = do(t, router, http.MethodPut, "/user/accounts/account-1/credentials", body, bearer("good-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	token, ok = bearerToken("  bearer   abc  ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Token abc", "abc", "Bearer a b", "Bearer good-token\tx"} {
		_, ok := bearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:3000"}, []string{"GET", "POST"}, []string{"Authorization"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
