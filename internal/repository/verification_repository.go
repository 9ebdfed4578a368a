package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
)

// verificationCodeRepository implements VerificationCodeRepository interface
type verificationCodeRepository struct {
	db DBTX
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(db DBTX) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Create stores a new verification code
func (r *verificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, phone, code, verifies_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		code.ID,
		code.Phone,
		code.Code,
		nullTime(code.VerifiesAt),
		code.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification code: %w", err)
	}

	return nil
}

// FindByCodeAndPhone returns every code issued for the (code, phone) pair
func (r *verificationCodeRepository) FindByCodeAndPhone(ctx context.Context, code, phone string) ([]*domain.VerificationCode, error) {
	query := `
		SELECT id, phone, code, verifies_at, expires_at
		FROM verification_codes
		WHERE code = $1 AND phone = $2
		FOR UPDATE
	`

	return r.query(ctx, query, code, phone)
}

// FindActiveByPhone returns codes for phone that were verified before now and
// have not expired
func (r *verificationCodeRepository) FindActiveByPhone(ctx context.Context, phone string, now time.Time) ([]*domain.VerificationCode, error) {
	query := `
		SELECT id, phone, code, verifies_at, expires_at
		FROM verification_codes
		WHERE phone = $1
			AND verifies_at IS NOT NULL
			AND verifies_at < $2
			AND expires_at > $2
		FOR UPDATE
	`

	return r.query(ctx, query, phone, now)
}

// Update persists the verification and expiry timestamps of a code
func (r *verificationCodeRepository) Update(ctx context.Context, code *domain.VerificationCode) error {
	query := `
		UPDATE verification_codes
		SET verifies_at = $2, expires_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, code.ID, nullTime(code.VerifiesAt), code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to update verification code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("verification code with id %s not found: %w", code.ID, ErrNotFound)
	}

	return nil
}

func (r *verificationCodeRepository) query(ctx context.Context, query string, args ...any) ([]*domain.VerificationCode, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification codes: %w", err)
	}
	defer rows.Close()

	var codes []*domain.VerificationCode
	for rows.Next() {
		code := &domain.VerificationCode{}
		var verifiesAt sql.NullTime

		err := rows.Scan(
			&code.ID,
			&code.Phone,
			&code.Code,
			&verifiesAt,
			&code.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification code: %w", err)
		}

		if verifiesAt.Valid {
			code.VerifiesAt = &verifiesAt.Time
		}

		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verification codes: %w", err)
	}

	return codes, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
