package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/food-review/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AccessSecret:         "test-access-secret",
		AccessTokenDuration:  time.Hour,
		RefreshSecret:        "test-refresh-secret",
		RefreshTokenDuration: 7 * 24 * time.Hour,
		OTPDuration:          5 * time.Minute,
		BcryptCost:           bcrypt.MinCost,
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentOTP struct {
	to  string
	otp string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (n *fakeNotifier) SendOTP(_ context.Context, to, otp string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentOTP{to: to, otp: otp})
	return n.err
}

func (n *fakeNotifier) last() (sentOTP, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentOTP{}, false
	}
	return n.sent[len(n.sent)-1], true
}

type fixedOTP string

func (f fixedOTP) Generate() (string, error) {
	return string(f), nil
}

type testEnv struct {
	svc      *Service
	repo     *memoryRepository
	tokens   *TokenService
	notifier *fakeNotifier
	clock    *testClock
	hasher   PasswordHasher
	registry *prometheus.Registry
	metrics  *Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	clock := newTestClock()

	tokens, err := NewTokenService(cfg)
	require.NoError(t, err)
	tokens.now = clock.Now

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	env := &testEnv{
		repo:     newMockRepository(),
		tokens:   tokens,
		notifier: &fakeNotifier{},
		clock:    clock,
		hasher:   NewBcryptHasher(cfg.BcryptCost),
		registry: registry,
		metrics:  metrics,
	}

	env.svc = NewService(cfg, newTestLogger(t), Dependencies{
		Repository: env.repo,
		Tokens:     tokens,
		Notifier:   env.notifier,
		Hasher:     env.hasher,
		OTP:        fixedOTP("123456"),
		Metrics:    metrics,
	})
	env.svc.now = clock.Now

	return env
}

// seedUser stores a user whose password is password.
func (e *testEnv) seedUser(t *testing.T, username, email, password string, role Role) *User {
	t.Helper()

	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	return e.repo.seed(&User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
}

func strPtr(s string) *string {
	return &s
}
