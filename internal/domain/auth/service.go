package auth

import (
	"context"
	"errors"
	"time"

	cryptoutil "p9ify/internal/platform/crypto"
	"p9ify/internal/platform/kv"
)

var (
	ErrAuthDisabled       = errors.New("authentication is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMFARequired        = errors.New("mfa code required")
	ErrInvalidMFACode     = errors.New("invalid mfa code")
	ErrMFAUnavailable     = errors.New("mfa requires an encryption key")
	ErrMFANotSetUp        = errors.New("mfa setup required")
)

type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service guards the API with a single administrator credential and an
// optional TOTP second factor.
type Service struct {
	secret       string
	passwordHash string
	ttl          time.Duration
	kv           kv.Store
	crypto       *cryptoutil.Service
	now          func() time.Time
}

// NewService builds the guard. store and crypto hold the TOTP secret; with
// either missing the second factor cannot be set up.
func NewService(secret, passwordHash string, ttl time.Duration, store kv.Store, crypto *cryptoutil.Service) *Service {
	return &Service{
		secret:       secret,
		passwordHash: passwordHash,
		ttl:          ttl,
		kv:           store,
		crypto:       crypto,
		now:          time.Now,
	}
}

func (s *Service) Enabled() bool {
	return s != nil && s.secret != ""
}

// Login checks the password and, once MFA is enabled, the TOTP code.
func (s *Service) Login(ctx context.Context, password, code string) (Token, error) {
	if !s.Enabled() {
		return Token{}, ErrAuthDisabled
	}
	if password == "" || CheckPassword(s.passwordHash, password) != nil {
		return Token{}, ErrInvalidCredentials
	}
	if err := s.checkSecondFactor(ctx, code); err != nil {
		return Token{}, err
	}
	return s.issue()
}

func (s *Service) issue() (Token, error) {
	now := s.now()
	claims := Claims{Role: RoleAdmin}
	claims.Subject = AdminSubject
	signed, err := GenerateToken(s.secret, claims, now, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: now.Add(s.ttl).UTC()}, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
