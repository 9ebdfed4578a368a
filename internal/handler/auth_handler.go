package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles phone verification, registration and login
type AuthHandler struct {
	verification service.VerificationService
	accounts     service.AccountService
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	verification service.VerificationService,
	accounts service.AccountService,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		verification: verification,
		accounts:     accounts,
		logger:       logger,
	}
}

// RequestCode handles verification code requests
// @Summary Request a verification code
// @Description Issue a one-time code for the phone. The code is returned in the body.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PhoneRequest true "Phone"
// @Success 200 {object} dto.VerificationCodeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/codes [post]
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req dto.PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	code, err := h.verification.RequestCode(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerificationCodeResponse{Code: code})
}

// VerifyCode handles verification code submissions
// @Summary Verify a code
// @Tags auth
// @Accept json
// @Produce json
// @Param code path string true "Verification code"
// @Param request body dto.PhoneRequest true "Phone"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 408 {object} dto.ErrorResponse
// @Router /auth/codes/{code} [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.verification.VerifyCode(c.Request.Context(), c.Param("code"), req.Phone); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Phone verified"})
}

// Register handles account registration
// @Summary Register a new account
// @Description Create an account for a phone that holds a verified code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 400 {object} dto.FieldErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.FieldErrorResponse
// @Router /auth/accounts [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	token, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(token))
}

// Login handles login by email or phone
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/sessions [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(token))
}

func tokenResponse(token *domain.AccessToken) dto.AccessTokenResponse {
	return dto.AccessTokenResponse{
		Token:        token.Token,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}
}
