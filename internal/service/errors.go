package service

import (
	"errors"
	"strings"
)

// Operation outcomes. Every failed operation wraps exactly one of these.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrRequestTimeout = errors.New("request timeout")
)

var outcomes = []error{
	ErrBadRequest,
	ErrUnauthorized,
	ErrForbidden,
	ErrNotFound,
	ErrConflict,
	ErrRequestTimeout,
}

// FieldError is an outcome that points at the offending phone and/or email.
// The fields hold the values exactly as the caller supplied them.
type FieldError struct {
	Kind  error
	Phone *string
	Email *string
}

func (e *FieldError) Error() string {
	var fields []string
	if e.Phone != nil {
		fields = append(fields, "phone")
	}
	if e.Email != nil {
		fields = append(fields, "email")
	}
	return e.Kind.Error() + ": " + strings.Join(fields, ", ")
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func (e *FieldError) empty() bool {
	return e.Phone == nil && e.Email == nil
}

// IsOutcome reports whether err carries one of the operation outcomes
func IsOutcome(err error) bool {
	return Outcome(err) != "internal"
}

// Outcome names the outcome carried by err for metrics and logs
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	for _, outcome := range outcomes {
		if errors.Is(err, outcome) {
			return strings.ReplaceAll(outcome.Error(), " ", "_")
		}
	}
	return "internal"
}
