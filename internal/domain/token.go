package domain

import "time"

// AccessToken represents a bearer credential issued at login or registration
type AccessToken struct {
	Token        string    `json:"token" db:"token"`
	RefreshToken string    `json:"refresh_token" db:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	AccountID    string    `json:"account_id" db:"account_id"`
}

// IsExpired checks if the token is expired at the given moment
func (t AccessToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
