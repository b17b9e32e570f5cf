package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elskow/food-review/internal/config"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	ErrMissingSecret = errors.New("token secret is not configured")
	ErrSharedSecret  = errors.New("access and refresh tokens must use different secrets")
)

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Kind     TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

type TokenService struct {
	keys map[TokenKind]signingKey
	now  func() time.Time
}

// NewTokenService resolves both signing keys once. A missing secret is a
// startup failure.
func NewTokenService(cfg *config.AuthConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedSecret
	}

	return &TokenService{
		keys: map[TokenKind]signingKey{
			AccessToken:  {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTokenDuration},
			RefreshToken: {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTokenDuration},
		},
		now: time.Now,
	}, nil
}

func (s *TokenService) Issue(user *User) (TokenPair, error) {
	access, err := s.sign(user, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.sign(user, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) IssueAccessToken(user *User) (string, error) {
	return s.sign(user, AccessToken)
}

func (s *TokenService) sign(user *User, kind TokenKind) (string, error) {
	key, ok := s.keys[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := s.now()
	claims := &Claims{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// Tokens issued within the same second still differ.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key.secret)
}

// Verify checks the signature against the secret for kind, then the expiry.
// It returns ErrTokenExpired only for correctly signed tokens that are past
// their expiry; every other failure is ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	key, ok := s.keys[kind]
	if !ok {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	validator := jwt.NewValidator(
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
