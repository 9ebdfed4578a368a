package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/utils"
)

// VerificationService defines methods for phone verification
type VerificationService interface {
	RequestCode(ctx context.Context, phone string) (string, error)
	VerifyCode(ctx context.Context, code, phone string) error
}

// AccountService defines methods for account operations
type AccountService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.AccessToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*domain.AccessToken, error)
	GetUserInformation(ctx context.Context, accountID string) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID, newPassword string) error
}

// Authenticator resolves a bearer token to the account it was issued to
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// PhoneNormalizer turns user input into a canonical phone number
type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// EmailValidator checks email syntax
type EmailValidator interface {
	Valid(email string) bool
}

// TokenIssuer mints bearer tokens
type TokenIssuer interface {
	Issue(accountID string, now time.Time) (*utils.IssuedToken, error)
}

// TokenCache is a read-through cache of token to account id
type TokenCache interface {
	Get(ctx context.Context, token string) (accountID string, found bool, err error)
	Set(ctx context.Context, token, accountID string, ttl time.Duration) error
}
