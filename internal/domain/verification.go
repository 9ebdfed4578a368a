package domain

import "time"

// VerificationCode is a one-time code proving possession of a phone number.
//
// VerifiesAt stays nil until the code is verified. A verified code is
// consumed by pulling ExpiresAt back to VerifiesAt, after which no instant
// satisfies IsActive.
type VerificationCode struct {
	ID         string     `json:"id" db:"id"`
	Phone      string     `json:"phone" db:"phone"` // E.164
	Code       string     `json:"code" db:"code"`
	VerifiesAt *time.Time `json:"verifies_at" db:"verifies_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
}

// IsExpired checks if the code can no longer be verified
func (v VerificationCode) IsExpired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

// IsActive reports whether the code was verified before now and is not yet
// expired or consumed
func (v VerificationCode) IsActive(now time.Time) bool {
	return v.VerifiesAt != nil && v.VerifiesAt.Before(now) && !v.IsExpired(now)
}

// MarkVerified records a successful verification
func (v *VerificationCode) MarkVerified(now time.Time) {
	verifiedAt := now
	v.VerifiesAt = &verifiedAt
}

// Consume expires the code so it cannot authorize another operation, even
// for a caller whose clock reads earlier than now
func (v *VerificationCode) Consume(now time.Time) {
	v.ExpiresAt = now
	if v.VerifiesAt != nil && v.VerifiesAt.Before(now) {
		v.ExpiresAt = *v.VerifiesAt
	}
}
