package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone is returned when a string is not a viable phone number
var ErrInvalidPhone = errors.New("invalid phone number")

// PhoneNormalizer parses raw phone input and formats it as E.164.
// Numbers without a country prefix are read in the default region.
type PhoneNormalizer struct {
	region string
}

// NewPhoneNormalizer creates a normalizer for the given default region (e.g. "KR")
func NewPhoneNormalizer(region string) *PhoneNormalizer {
	return &PhoneNormalizer{region: region}
}

// Normalize returns the E.164 form of raw
func (p *PhoneNormalizer) Normalize(raw string) (string, error) {
	number, err := phonenumbers.Parse(raw, p.region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// EmailValidator checks email syntax
type EmailValidator struct {
	validate *validator.Validate
}

// NewEmailValidator creates a new email validator
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{validate: validator.New()}
}

// Valid validates an email address
func (e *EmailValidator) Valid(email string) bool {
	return e.validate.Var(email, "required,email") == nil
}
