package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
	"github.com/elskow/food-review/internal/mail"
)

type Dependencies struct {
	Repository Repository
	Tokens     *TokenService
	Notifier   mail.Notifier
	Hasher     PasswordHasher
	OTP        OTPGenerator
	Metrics    *Metrics
}

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	tokens     *TokenService
	notifier   mail.Notifier
	hasher     PasswordHasher
	otp        OTPGenerator
	metrics    *Metrics
	now        func() time.Time
}

type RegisterInput struct {
	FirstName *string
	LastName  *string
	Username  string
	Email     string
	Password  string
}

type LoginResult struct {
	Profile
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func NewService(config *config.AuthConfig, log *zap.Logger, deps Dependencies) *Service {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = NewBcryptHasher(config.BcryptCost)
	}
	otp := deps.OTP
	if otp == nil {
		otp = NewOTPGenerator()
	}

	return &Service{
		config:     config,
		log:        log,
		repository: deps.Repository,
		tokens:     deps.Tokens,
		notifier:   deps.Notifier,
		hasher:     hasher,
		otp:        otp,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account after checking that neither the email nor
// the username is taken by a non-deleted user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (err error) {
	defer func() { s.metrics.observe("register", err) }()

	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	if len(in.Password) > MaxPasswordBytes {
		return newError(KindBadRequest, MsgPasswordTooLong)
	}

	if _, err := s.repository.FindByEmail(ctx, email); err == nil {
		return newError(KindConflict, MsgEmailExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if _, err := s.repository.FindByUsername(ctx, username); err == nil {
		return newError(KindConflict, MsgUsernameExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to look up username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}

	if err := s.repository.Create(ctx, user); err != nil {
		// A concurrent registration won the race past the pre-check.
		if errors.Is(err, ErrUserExists) {
			return newError(KindConflict, MsgUserExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// Login verifies credentials and starts the user's single session by storing
// the freshly issued refresh token on the user record.
func (s *Service) Login(ctx context.Context, username, password string) (_ *LoginResult, err error) {
	defer func() { s.metrics.observe("login", err) }()

	user, err := s.repository.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = s.hasher.Hash("dummy") // Prevent timing attacks
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warn("login rejected", zap.Uint("user_id", user.ID))
		return nil, newError(KindBadRequest, MsgPasswordIncorrect)
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	user.RefreshToken = &pair.RefreshToken
	if err := s.update(ctx, user, ColumnRefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID))

	return &LoginResult{
		Profile:      user.Profile(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh exchanges the user's current refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (_ string, err error) {
	defer func() { s.metrics.observe("refresh", err) }()

	claims, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", unauthorized(MsgInvalidRefreshToken, err)
	}

	user, err := s.repository.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", unauthorized(MsgInvalidRefreshToken, nil)
		}
		return "", fmt.Errorf("failed to look up refresh token: %w", err)
	}

	// A superseded token can still carry a valid signature.
	if user.ID != claims.ID {
		return "", unauthorized(MsgInvalidRefreshToken, nil)
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return access, nil
}

// Logout drops the stored refresh token, ending the user's session.
func (s *Service) Logout(ctx context.Context, userID uint) (err error) {
	defer func() { s.metrics.observe("logout", err) }()

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}

	user.RefreshToken = nil
	if err := s.update(ctx, user, ColumnRefreshToken); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	s.log.Info("user logged out", zap.Uint("user_id", user.ID))
	return nil
}

// SendResetPasswordOTP stores a new reset code and mails it. The code is
// persisted before sending, so it stays redeemable if delivery fails.
func (s *Service) SendResetPasswordOTP(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.observe("forgot_password", err) }()

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otp.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	user.SetOTP(code, s.now().Add(s.config.OTPDuration))
	if err := s.update(ctx, user, ColumnOTP, ColumnOTPExpiryTime); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code); err != nil {
		s.log.Error("otp stored but email delivery failed",
			zap.Uint("user_id", user.ID),
			zap.Error(err))
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	s.log.Info("reset otp sent", zap.Uint("user_id", user.ID))
	return nil
}

// VerifyResetPasswordOTP redeems a reset code. A verified code is cleared and
// cannot be replayed.
func (s *Service) VerifyResetPasswordOTP(ctx context.Context, email, otp string) (err error) {
	defer func() { s.metrics.observe("verify_otp", err) }()

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.OTP == nil || *user.OTP != otp {
		return newError(KindBadRequest, MsgInvalidOTP)
	}

	if user.OTPExpiryTime == nil || user.OTPExpiryTime.Before(s.now()) {
		return newError(KindBadRequest, MsgOTPExpired)
	}

	user.ClearOTP()
	if err := s.update(ctx, user, ColumnOTP, ColumnOTPExpiryTime); err != nil {
		return fmt.Errorf("failed to clear otp: %w", err)
	}

	s.log.Info("reset otp verified", zap.Uint("user_id", user.ID))
	return nil
}

// ResetPassword replaces the password hash of the user owning email.
//
// The call is not bound to a prior VerifyResetPasswordOTP; callers must
// enforce the ordering.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (err error) {
	defer func() { s.metrics.observe("reset_password", err) }()

	if len(newPassword) > MaxPasswordBytes {
		return newError(KindBadRequest, MsgPasswordTooLong)
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	user.ClearOTP()
	if err := s.update(ctx, user, ColumnPasswordHash, ColumnOTP, ColumnOTPExpiryTime); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	s.log.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

// Authenticate resolves an access token to its live, non-deleted user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return nil, unauthorized(reasonMessage(err), err)
	}

	user, err := s.repository.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, unauthorized(ReasonUnauthorized, nil)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// update writes columns of user. A user deleted since the lookup is reported
// as not found.
func (s *Service) update(ctx context.Context, user *User, columns ...string) error {
	err := s.repository.Update(ctx, user, columns...)
	if errors.Is(err, ErrUserNotFound) {
		return newError(KindNotFound, MsgUserNotFound)
	}
	return err
}

func (s *Service) findByID(ctx context.Context, id uint) (*User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func reasonMessage(err error) string {
	if errors.Is(err, ErrTokenExpired) {
		return ReasonTokenExpired
	}
	return ReasonUnauthorized
}
