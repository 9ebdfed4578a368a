package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/repository"
	"github.com/prperemyshlev/account-service/internal/utils"
	"go.uber.org/zap"
)

// accountService implements AccountService interface
type accountService struct {
	store      repository.Store
	phones     PhoneNormalizer
	emails     EmailValidator
	tokens     TokenIssuer
	bcryptCost int
	metrics    *Metrics
	logger     *zap.Logger
	now        func() time.Time

	hashPassword  func(password string, cost int) (string, error)
	checkPassword func(password, hash string) bool
}

// NewAccountService creates a new account service
func NewAccountService(
	store repository.Store,
	phones PhoneNormalizer,
	emails EmailValidator,
	tokens TokenIssuer,
	bcryptCost int,
	metrics *Metrics,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		store:      store,
		phones:     phones,
		emails:     emails,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,

		hashPassword:  utils.HashPassword,
		checkPassword: utils.CheckPasswordHash,
	}
}

// Register creates an account for a phone holding a verified code and
// returns its first access token
func (s *accountService) Register(ctx context.Context, req *dto.RegisterRequest) (token *domain.AccessToken, err error) {
	defer func() { s.metrics.Registered(ctx, err) }()

	invalid := &FieldError{Kind: ErrBadRequest}
	phone, err := s.phones.Normalize(req.Phone)
	if err != nil {
		invalid.Phone = &req.Phone
	}
	if !s.emails.Valid(req.Email) {
		invalid.Email = &req.Email
	}
	if !invalid.empty() {
		return nil, invalid
	}

	id, err := utils.NewID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &domain.Account{
		ID:        id,
		Name:      req.Name,
		Nickname:  req.Nickname,
		Phone:     phone,
		Email:     req.Email,
		CreatedAt: now,
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	credential := domain.NewPasswordCredential(account.ID, hash, now)

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		taken := &FieldError{Kind: ErrConflict}
		if err := exists(repos.Accounts.GetByPhone(ctx, phone)); err != nil {
			if !errors.Is(err, errTaken) {
				return err
			}
			taken.Phone = &req.Phone
		}
		if err := exists(repos.Accounts.GetByEmail(ctx, req.Email)); err != nil {
			if !errors.Is(err, errTaken) {
				return err
			}
			taken.Email = &req.Email
		}
		if !taken.empty() {
			return taken
		}

		consumed, err := ConsumeActiveCodes(ctx, repos.Codes, phone, s.now)
		if err != nil {
			return err
		}
		if len(consumed) == 0 {
			return fmt.Errorf("%w: phone is not verified", ErrForbidden)
		}

		if err := repos.Accounts.Create(ctx, account); err != nil {
			return conflictFromDuplicate(err, req)
		}
		if err := repos.Credentials.Create(ctx, credential); err != nil {
			return err
		}

		token, err = s.issueToken(ctx, repos, account.ID, now)
		return err
	})
	if err != nil {
		if IsOutcome(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	s.logger.Info("Account registered", zap.String("account_id", account.ID))

	return token, nil
}

// Login exchanges an email or phone and a password for a new access token
func (s *accountService) Login(ctx context.Context, req *dto.LoginRequest) (token *domain.AccessToken, err error) {
	defer func() { s.metrics.LoggedIn(ctx, err) }()

	var lookup func(ctx context.Context, accounts repository.AccountRepository) (*domain.Account, error)
	if s.emails.Valid(req.ID) {
		lookup = func(ctx context.Context, accounts repository.AccountRepository) (*domain.Account, error) {
			return accounts.GetByEmail(ctx, req.ID)
		}
	} else {
		phone, err := s.phones.Normalize(req.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id is neither an email nor a phone", ErrBadRequest)
		}
		lookup = func(ctx context.Context, accounts repository.AccountRepository) (*domain.Account, error) {
			return accounts.GetByPhone(ctx, phone)
		}
	}

	credential, err := s.credentialOf(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if !s.checkPassword(req.Password, credential.PasswordHash) {
		return nil, fmt.Errorf("%w: wrong password", ErrForbidden)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		token, err = s.issueToken(ctx, repos, credential.AccountID, s.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	s.logger.Info("Account logged in", zap.String("account_id", credential.AccountID))

	return token, nil
}

// credentialOf loads the password credential of the account found by lookup
func (s *accountService) credentialOf(
	ctx context.Context,
	lookup func(ctx context.Context, accounts repository.AccountRepository) (*domain.Account, error),
) (*domain.Credential, error) {
	var credential *domain.Credential
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		account, err := lookup(ctx, repos.Accounts)
		if err != nil {
			return unauthorizedIfMissing(err, "no such account")
		}

		credential, err = repos.Credentials.Get(ctx, account.ID, domain.ProviderSelf)
		if err != nil {
			return unauthorizedIfMissing(err, "account has no password")
		}
		return nil
	})
	if err != nil {
		if IsOutcome(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	return credential, nil
}

// GetUserInformation returns the profile of the account
func (s *accountService) GetUserInformation(ctx context.Context, accountID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		account, err = repos.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return unauthorizedIfMissing(err, "no such account")
		}
		return nil
	})
	if err != nil {
		if IsOutcome(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ChangePassword replaces the password of an account whose phone holds a
// verified code
func (s *accountService) ChangePassword(ctx context.Context, accountID, newPassword string) (err error) {
	defer func() { s.metrics.PasswordChanged(ctx, err) }()

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		account, err := repos.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return unauthorizedIfMissing(err, "no such account")
		}

		credential, err := repos.Credentials.Get(ctx, account.ID, domain.ProviderSelf)
		if err != nil {
			return unauthorizedIfMissing(err, "account has no password")
		}

		consumed, err := ConsumeActiveCodes(ctx, repos.Codes, account.Phone, s.now)
		if err != nil {
			return err
		}
		if len(consumed) == 0 {
			return fmt.Errorf("%w: phone is not verified", ErrForbidden)
		}

		credential.SetPasswordHash(hash, s.now())
		return repos.Credentials.Update(ctx, credential)
	})
	if err != nil {
		if IsOutcome(err) {
			return err
		}
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info("Password changed", zap.String("account_id", accountID))

	return nil
}

// hash runs bcrypt ahead of the unit of work that stores the result
func (s *accountService) hash(password string) (string, error) {
	hash, err := s.hashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *accountService) issueToken(
	ctx context.Context,
	repos *repository.Repositories,
	accountID string,
	now time.Time,
) (*domain.AccessToken, error) {
	issued, err := s.tokens.Issue(accountID, now)
	if err != nil {
		return nil, err
	}

	token := &domain.AccessToken{
		Token:        issued.Token,
		RefreshToken: issued.RefreshToken,
		ExpiresAt:    issued.ExpiresAt,
		AccountID:    accountID,
	}
	if err := repos.Tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save access token: %w", err)
	}

	return token, nil
}

var errTaken = errors.New("taken")

// exists turns a lookup result into errTaken when a record was found
func exists(_ *domain.Account, err error) error {
	switch {
	case err == nil:
		return errTaken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// conflictFromDuplicate maps a unique violation lost to a concurrent
// registration onto the same outcome the pre-check reports
func conflictFromDuplicate(err error, req *dto.RegisterRequest) error {
	switch {
	case errors.Is(err, repository.ErrDuplicatePhone):
		return &FieldError{Kind: ErrConflict, Phone: &req.Phone}
	case errors.Is(err, repository.ErrDuplicateEmail):
		return &FieldError{Kind: ErrConflict, Email: &req.Email}
	default:
		return err
	}
}

func unauthorizedIfMissing(err error, reason string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
	}
	return err
}
