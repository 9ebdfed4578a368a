// Package memory provides an in-process implementation of repository.Store.
//
// Units of work are serialized by a single mutex and applied to a private
// copy of the data, which replaces the live data only when the unit
// succeeds. Intended for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/repository"
)

type credentialKey struct {
	accountID string
	provider  domain.Provider
}

type data struct {
	accounts    map[string]domain.Account
	credentials map[credentialKey]domain.Credential
	tokens      map[string]domain.AccessToken
	codes       map[string]domain.VerificationCode
	codeOrder   []string
}

func newData() *data {
	return &data{
		accounts:    make(map[string]domain.Account),
		credentials: make(map[credentialKey]domain.Credential),
		tokens:      make(map[string]domain.AccessToken),
		codes:       make(map[string]domain.VerificationCode),
	}
}

func (d *data) clone() *data {
	c := &data{
		accounts:    make(map[string]domain.Account, len(d.accounts)),
		credentials: make(map[credentialKey]domain.Credential, len(d.credentials)),
		tokens:      make(map[string]domain.AccessToken, len(d.tokens)),
		codes:       make(map[string]domain.VerificationCode, len(d.codes)),
		codeOrder:   append([]string(nil), d.codeOrder...),
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.credentials {
		c.credentials[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	for k, v := range d.codes {
		c.codes[k] = copyCode(v)
	}
	return c
}

// Store is an in-memory repository.Store
type Store struct {
	mu   sync.Mutex
	data *data
}

var _ repository.Store = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{data: newData()}
}

// WithinTx runs fn against a private copy of the data and publishes the copy
// when fn succeeds
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	repos := &repository.Repositories{
		Accounts:    &accountRepository{data: work},
		Credentials: &credentialRepository{data: work},
		Tokens:      &tokenRepository{data: work},
		Codes:       &verificationCodeRepository{data: work},
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	s.data = work
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func copyCode(c domain.VerificationCode) domain.VerificationCode {
	if c.VerifiesAt != nil {
		verifiesAt := *c.VerifiesAt
		c.VerifiesAt = &verifiesAt
	}
	return c
}
