package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/account-service/internal/domain"
)

const (
	accountsPhoneConstraint = "accounts_phone_key"
	accountsEmailConstraint = "accounts_email_key"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, nickname, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Nickname,
		account.Phone,
		account.Email,
		account.CreatedAt,
	)

	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok {
			switch constraint {
			case accountsPhoneConstraint:
				return fmt.Errorf("account with phone %s already exists: %w", account.Phone, ErrDuplicatePhone)
			case accountsEmailConstraint:
				return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves an account by exact email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, "email", email)
}

// GetByPhone retrieves an account by E.164 phone
func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.getBy(ctx, "phone", phone)
}

// getBy looks up one account; column is never user input
func (r *accountRepository) getBy(ctx context.Context, column, value string) (*domain.Account, error) {
	query := `
		SELECT id, name, nickname, phone, email, created_at
		FROM accounts
		WHERE ` + column + ` = $1
	`

	account := &domain.Account{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID,
		&account.Name,
		&account.Nickname,
		&account.Phone,
		&account.Email,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", column, err)
	}

	return account, nil
}
