package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/account-service/internal/domain"
)

// credentialRepository implements CredentialRepository interface
type credentialRepository struct {
	db DBTX
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db DBTX) CredentialRepository {
	return &credentialRepository{db: db}
}

// Create stores a credential for an account
func (r *credentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	query := `
		INSERT INTO credentials (account_id, provider, password_hash, last_updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		credential.AccountID,
		string(credential.Provider),
		credential.PasswordHash,
		credential.LastUpdatedAt,
	)

	if err != nil {
		if _, ok := uniqueViolationConstraint(err); ok {
			return fmt.Errorf("credential %s for account %s: %w", credential.Provider, credential.AccountID, ErrDuplicateCredential)
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

// Get retrieves the credential of an account for a provider
func (r *credentialRepository) Get(ctx context.Context, accountID string, provider domain.Provider) (*domain.Credential, error) {
	query := `
		SELECT account_id, provider, password_hash, last_updated_at
		FROM credentials
		WHERE account_id = $1 AND provider = $2
	`

	credential := &domain.Credential{}
	var storedProvider string

	err := r.db.QueryRowContext(ctx, query, accountID, string(provider)).Scan(
		&credential.AccountID,
		&storedProvider,
		&credential.PasswordHash,
		&credential.LastUpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential %s for account %s not found: %w", provider, accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	credential.Provider = domain.Provider(storedProvider)
	return credential, nil
}

// Update replaces the password hash of an existing credential
func (r *credentialRepository) Update(ctx context.Context, credential *domain.Credential) error {
	query := `
		UPDATE credentials
		SET password_hash = $3, last_updated_at = $4
		WHERE account_id = $1 AND provider = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		credential.AccountID,
		string(credential.Provider),
		credential.PasswordHash,
		credential.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("credential %s for account %s not found: %w", credential.Provider, credential.AccountID, ErrNotFound)
	}

	return nil
}
