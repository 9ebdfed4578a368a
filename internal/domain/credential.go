package domain

import "time"

// Provider identifies the kind of proof a credential holds
type Provider string

// ProviderSelf is the self-issued password provider
const ProviderSelf Provider = "self"

// Credential represents one proof-of-identity method of an account.
// There is at most one credential per (AccountID, Provider).
type Credential struct {
	AccountID     string    `json:"account_id" db:"account_id"`
	Provider      Provider  `json:"provider" db:"provider"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	LastUpdatedAt time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// NewPasswordCredential creates a self-issued credential holding a bcrypt hash
func NewPasswordCredential(accountID, hash string, now time.Time) *Credential {
	c := &Credential{
		AccountID: accountID,
		Provider:  ProviderSelf,
	}
	c.SetPasswordHash(hash, now)
	return c
}

// SetPasswordHash replaces the stored hash
func (c *Credential) SetPasswordHash(hash string, now time.Time) {
	c.PasswordHash = hash
	c.LastUpdatedAt = now
}
