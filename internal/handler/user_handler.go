package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/service"
	"go.uber.org/zap"
)

// UserHandler handles operations on the caller's own account
type UserHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(accounts service.AccountService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// GetUserInformation handles profile reads
// @Summary Get account profile
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} dto.UserInformationResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /user/accounts/{accountId} [get]
func (h *UserHandler) GetUserInformation(c *gin.Context) {
	accountID, ok := ownAccount(c)
	if !ok {
		return
	}

	account, err := h.accounts.GetUserInformation(c.Request.Context(), accountID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserInformationResponse{
		Name:      account.Name,
		Nickname:  account.Nickname,
		Phone:     account.Phone,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	})
}

// ChangePassword handles password changes
// @Summary Change password
// @Description Requires a freshly verified code for the account's phone
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param accountId path string true "Account ID"
// @Param request body dto.ChangePasswordRequest true "New password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /user/accounts/{accountId}/credentials [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	accountID, ok := ownAccount(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), accountID, req.NewPassword); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password changed"})
}

// ownAccount returns the path account id when it belongs to the caller
func ownAccount(c *gin.Context) (string, bool) {
	accountID := c.Param("accountId")
	if c.GetString(AccountIDKey) != accountID {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Token does not belong to this account",
		})
		return "", false
	}
	return accountID, true
}
