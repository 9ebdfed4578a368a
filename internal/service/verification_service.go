package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/repository"
	"github.com/prperemyshlev/account-service/internal/utils"
	"go.uber.org/zap"
)

// verificationService implements VerificationService interface
type verificationService struct {
	store   repository.Store
	phones  PhoneNormalizer
	codeTTL time.Duration
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	store repository.Store,
	phones PhoneNormalizer,
	codeTTL time.Duration,
	metrics *Metrics,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		store:   store,
		phones:  phones,
		codeTTL: codeTTL,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// RequestCode issues a new code for the phone and returns its value
func (s *verificationService) RequestCode(ctx context.Context, phone string) (code string, err error) {
	defer func() { s.metrics.CodeRequested(ctx, err) }()

	normalized, err := s.phones.Normalize(phone)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	value, err := utils.GenerateVerificationCode()
	if err != nil {
		return "", err
	}

	id, err := utils.NewID()
	if err != nil {
		return "", err
	}

	now := s.now()
	verification := &domain.VerificationCode{
		ID:        id,
		Phone:     normalized,
		Code:      value,
		ExpiresAt: now.Add(s.codeTTL),
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Codes.Create(ctx, verification)
	})
	if err != nil {
		return "", fmt.Errorf("failed to save verification code: %w", err)
	}

	s.logger.Info("Verification code issued",
		zap.String("code_id", id),
		zap.Time("expires_at", verification.ExpiresAt),
	)

	return value, nil
}

// VerifyCode marks every unexpired code matching (code, phone) as verified
func (s *verificationService) VerifyCode(ctx context.Context, code, phone string) (err error) {
	defer func() { s.metrics.CodeVerified(ctx, err) }()

	normalized, err := s.phones.Normalize(phone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		matches, err := repos.Codes.FindByCodeAndPhone(ctx, code, normalized)
		if err != nil {
			return err
		}
		now := s.now()
		if len(matches) == 0 {
			return fmt.Errorf("%w: no such code for phone", ErrNotFound)
		}

		verified := 0
		for _, match := range matches {
			if match.IsExpired(now) {
				continue
			}
			match.MarkVerified(now)
			if err := repos.Codes.Update(ctx, match); err != nil {
				return err
			}
			verified++
		}

		if verified == 0 {
			return fmt.Errorf("%w: code expired", ErrRequestTimeout)
		}
		return nil
	})
	if err != nil {
		if IsOutcome(err) {
			return err
		}
		return fmt.Errorf("failed to verify code: %w", err)
	}

	return nil
}

// ConsumeActiveCodes expires every active code of the phone and returns
// them. It must run inside the caller's unit of work. The clock is read
// again once the codes are locked and only codes still active at that
// instant are consumed.
func ConsumeActiveCodes(
	ctx context.Context,
	codes repository.VerificationCodeRepository,
	phone string,
	clock func() time.Time,
) ([]*domain.VerificationCode, error) {
	locked, err := codes.FindActiveByPhone(ctx, phone, clock())
	if err != nil {
		return nil, err
	}

	now := clock()
	active := make([]*domain.VerificationCode, 0, len(locked))
	for _, code := range locked {
		if !code.IsActive(now) {
			continue
		}
		code.Consume(now)
		if err := codes.Update(ctx, code); err != nil {
			return nil, err
		}
		active = append(active, code)
	}

	return active, nil
}
