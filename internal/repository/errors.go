package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePhone is returned when an account with the phone already exists
	ErrDuplicatePhone = errors.New("account with this phone already exists")

	// ErrDuplicateEmail is returned when an account with the email already exists
	ErrDuplicateEmail = errors.New("account with this email already exists")

	// ErrDuplicateToken is returned when trying to store an existing token string
	ErrDuplicateToken = errors.New("access token already exists")

	// ErrDuplicateCredential is returned when the account already has a credential for the provider
	ErrDuplicateCredential = errors.New("credential for this provider already exists")
)

const uniqueViolation = "23505"

// uniqueViolationConstraint returns the violated constraint name when err is a
// PostgreSQL unique_violation
func uniqueViolationConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
