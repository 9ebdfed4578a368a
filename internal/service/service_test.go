package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/dto"
	"github.com/prperemyshlev/account-service/internal/repository"
	"github.com/prperemyshlev/account-service/internal/repository/memory"
	"github.com/prperemyshlev/account-service/internal/utils"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPhone           = "01012345678"
	testNormalizedPhone = "+821012345678"
	testEmail           = "user@example.com"
	testPassword        = "Password123"
	testSecret          = "test-secret-key-that-is-at-least-32-characters-long"
	testCodeTTL         = 5 * time.Minute
	testClockTick       = time.Second
)

// testClock advances by one second on every reading so that a code
// verified at one call is strictly in the past at the next
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(testClockTick)
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store        *memory.Store
	clock        *testClock
	verification *verificationService
	accounts     *accountService
	auth         *authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	store := memory.NewStore()
	clock := newTestClock()
	logger := zap.NewNop()
	phones := utils.NewPhoneNormalizer("KR")

	verification := NewVerificationService(store, phones, testCodeTTL, metrics, logger).(*verificationService)
	verification.now = clock.Now

	accounts := NewAccountService(
		store,
		phones,
		utils.NewEmailValidator(),
		utils.NewTokenIssuer(testSecret, time.Hour, 24*time.Hour),
		bcrypt.MinCost,
		metrics,
		logger,
	).(*accountService)
	accounts.now = clock.Now

	auth := NewAuthenticator(store, nil, time.Minute, logger).(*authenticator)
	auth.now = clock.Now

	return &fixture{
		store:        store,
		clock:        clock,
		verification: verification,
		accounts:     accounts,
		auth:         auth,
	}
}

// verifyPhone requests and verifies a code for phone, returning the code
func (f *fixture) verifyPhone(t *testing.T, phone string) string {
	t.Helper()

	ctx := context.Background()
	code, err := f.verification.RequestCode(ctx, phone)
	require.NoError(t, err)
	require.NoError(t, f.verification.VerifyCode(ctx, code, phone))
	return code
}

func (f *fixture) register(t *testing.T, phone, email string) *domain.AccessToken {
	t.Helper()

	f.verifyPhone(t, phone)
	token, err := f.accounts.Register(context.Background(), registerRequest(phone, email))
	require.NoError(t, err)
	return token
}

func (f *fixture) codes(t *testing.T, phone string) []*domain.VerificationCode {
	t.Helper()

	var codes []*domain.VerificationCode
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		codes, err = repos.Codes.FindActiveByPhone(ctx, phone, f.clock.Now())
		return err
	})
	require.NoError(t, err)
	return codes
}

func registerRequest(phone, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Name:     "Hong Gildong",
		Nickname: "gildong",
		Phone:    phone,
	}
}
