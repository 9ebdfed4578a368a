package repository

import (
	"context"

	"github.com/prperemyshlev/account-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Accounts    AccountRepository
	Credentials CredentialRepository
	Tokens      AccessTokenRepository
	Codes       VerificationCodeRepository
}

// NewRepositories creates all PostgreSQL repositories bound to db
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(db),
		Credentials: NewCredentialRepository(db),
		Tokens:      NewTokenRepository(db),
		Codes:       NewVerificationCodeRepository(db),
	}
}

// PostgresStore is the PostgreSQL-backed Store
type PostgresStore struct {
	db *database.Postgres
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *database.Postgres) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithinTx runs fn inside a database transaction
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return WithTx(ctx, s.db.DB, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// Ping checks if the database is available
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
