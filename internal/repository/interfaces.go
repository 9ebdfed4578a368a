package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
)

// AccountRepository defines methods for account operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
}

// CredentialRepository defines methods for credential operations
type CredentialRepository interface {
	Create(ctx context.Context, credential *domain.Credential) error
	Get(ctx context.Context, accountID string, provider domain.Provider) (*domain.Credential, error)
	Update(ctx context.Context, credential *domain.Credential) error
}

// AccessTokenRepository defines methods for access token operations
type AccessTokenRepository interface {
	Create(ctx context.Context, token *domain.AccessToken) error
	GetByToken(ctx context.Context, token string) (*domain.AccessToken, error)
}

// VerificationCodeRepository defines methods for verification code operations.
// Finders lock the returned rows until the surrounding transaction ends.
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *domain.VerificationCode) error
	FindByCodeAndPhone(ctx context.Context, code, phone string) ([]*domain.VerificationCode, error)
	FindActiveByPhone(ctx context.Context, phone string, now time.Time) ([]*domain.VerificationCode, error)
	Update(ctx context.Context, code *domain.VerificationCode) error
}

// Store runs units of work against the record store.
//
// fn receives repositories bound to one transaction; the unit commits when
// fn returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}
