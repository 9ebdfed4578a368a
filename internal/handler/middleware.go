package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/service"
	"go.uber.org/zap"
)

// AccountIDKey is the context key holding the authenticated account id
const AccountIDKey = "account_id"

const bearerScheme = "Bearer"

// AuthMiddleware resolves the bearer token to an account and binds its id
// to the request context
func AuthMiddleware(auth service.Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			return
		}

		accountID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}

// bearerToken extracts the credential of a "Bearer <token>" header.
// The scheme is matched case-insensitively and the token may not contain
// whitespace.
func bearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], bearerScheme) {
		return "", false
	}
	return fields[1], true
}
