package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/repository"
)

type accountRepository struct {
	data *data
}

func (r *accountRepository) Create(_ context.Context, account *domain.Account) error {
	for _, existing := range r.data.accounts {
		if existing.Phone == account.Phone {
			return fmt.Errorf("account with phone %s already exists: %w", account.Phone, repository.ErrDuplicatePhone)
		}
		if existing.Email == account.Email {
			return fmt.Errorf("account with email %s already exists: %w", account.Email, repository.ErrDuplicateEmail)
		}
	}
	r.data.accounts[account.ID] = *account
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := r.data.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with id %s not found: %w", id, repository.ErrNotFound)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find("email", email, func(a domain.Account) bool { return a.Email == email })
}

func (r *accountRepository) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return r.find("phone", phone, func(a domain.Account) bool { return a.Phone == phone })
}

func (r *accountRepository) find(field, value string, match func(domain.Account) bool) (*domain.Account, error) {
	for _, account := range r.data.accounts {
		if match(account) {
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account with %s %s not found: %w", field, value, repository.ErrNotFound)
}

type credentialRepository struct {
	data *data
}

func (r *credentialRepository) Create(_ context.Context, credential *domain.Credential) error {
	key := credentialKey{accountID: credential.AccountID, provider: credential.Provider}
	if _, ok := r.data.credentials[key]; ok {
		return fmt.Errorf("credential %s for account %s: %w", credential.Provider, credential.AccountID, repository.ErrDuplicateCredential)
	}
	if _, ok := r.data.accounts[credential.AccountID]; !ok {
		return fmt.Errorf("account with id %s not found: %w", credential.AccountID, repository.ErrNotFound)
	}
	r.data.credentials[key] = *credential
	return nil
}

func (r *credentialRepository) Get(_ context.Context, accountID string, provider domain.Provider) (*domain.Credential, error) {
	credential, ok := r.data.credentials[credentialKey{accountID: accountID, provider: provider}]
	if !ok {
		return nil, fmt.Errorf("credential %s for account %s not found: %w", provider, accountID, repository.ErrNotFound)
	}
	return &credential, nil
}

func (r *credentialRepository) Update(_ context.Context, credential *domain.Credential) error {
	key := credentialKey{accountID: credential.AccountID, provider: credential.Provider}
	if _, ok := r.data.credentials[key]; !ok {
		return fmt.Errorf("credential %s for account %s not found: %w", credential.Provider, credential.AccountID, repository.ErrNotFound)
	}
	r.data.credentials[key] = *credential
	return nil
}

type tokenRepository struct {
	data *data
}

func (r *tokenRepository) Create(_ context.Context, token *domain.AccessToken) error {
	if _, ok := r.data.tokens[token.Token]; ok {
		return fmt.Errorf("token already exists: %w", repository.ErrDuplicateToken)
	}
	if _, ok := r.data.accounts[token.AccountID]; !ok {
		return fmt.Errorf("account with id %s not found: %w", token.AccountID, repository.ErrNotFound)
	}
	r.data.tokens[token.Token] = *token
	return nil
}

func (r *tokenRepository) GetByToken(_ context.Context, token string) (*domain.AccessToken, error) {
	accessToken, ok := r.data.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", repository.ErrNotFound)
	}
	return &accessToken, nil
}

type verificationCodeRepository struct {
	data *data
}

func (r *verificationCodeRepository) Create(_ context.Context, code *domain.VerificationCode) error {
	if _, ok := r.data.codes[code.ID]; ok {
		return fmt.Errorf("verification code with id %s already exists", code.ID)
	}
	r.data.codes[code.ID] = copyCode(*code)
	r.data.codeOrder = append(r.data.codeOrder, code.ID)
	return nil
}

func (r *verificationCodeRepository) FindByCodeAndPhone(_ context.Context, code, phone string) ([]*domain.VerificationCode, error) {
	return r.filter(func(c domain.VerificationCode) bool {
		return c.Code == code && c.Phone == phone
	}), nil
}

func (r *verificationCodeRepository) FindActiveByPhone(_ context.Context, phone string, now time.Time) ([]*domain.VerificationCode, error) {
	return r.filter(func(c domain.VerificationCode) bool {
		return c.Phone == phone && c.IsActive(now)
	}), nil
}

func (r *verificationCodeRepository) Update(_ context.Context, code *domain.VerificationCode) error {
	if _, ok := r.data.codes[code.ID]; !ok {
		return fmt.Errorf("verification code with id %s not found: %w", code.ID, repository.ErrNotFound)
	}
	r.data.codes[code.ID] = copyCode(*code)
	return nil
}

// filter returns copies in insertion order
func (r *verificationCodeRepository) filter(match func(domain.VerificationCode) bool) []*domain.VerificationCode {
	var codes []*domain.VerificationCode
	for _, id := range r.data.codeOrder {
		code := r.data.codes[id]
		if match(code) {
			c := copyCode(code)
			codes = append(codes, &c)
		}
	}
	return codes
}
