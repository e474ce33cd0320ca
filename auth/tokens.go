package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/coreybb/menuorders/models"
)

const (
	// TokenType is reported to clients alongside every access token.
	TokenType = "bearer"

	// DefaultTokenTTL applies when IssueToken is called without a lifetime.
	DefaultTokenTTL = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthorized       = errors.New("invalid auth credentials")
)

var signingMethod = jwt.SigningMethodHS256

// Claims carried by an access token. Only sub and exp take part in
// authorization; iat and jti are informational.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService authenticates users and issues/verifies signed access tokens.
// Verification is stateless: nothing about issued tokens is kept in memory.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	credentials *CredentialStore
	now         func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, mostly for tests that need to step past expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService builds a service signing with secret. ttl is the lifetime
// used for tokens handed out at login.
func NewTokenService(secret []byte, ttl time.Duration, credentials *CredentialStore, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret cannot be empty")
	}
	if credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{
		secret:      secret,
		ttl:         ttl,
		credentials: credentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL is the lifetime of tokens issued at login.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Authenticate checks a username/password pair against the credential store.
func (s *TokenService) Authenticate(username, password string) (*models.User, error) {
	user, ok := s.credentials.Lookup(username)
	if !ok || !verifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// IssueToken signs a token for subject that expires at now+ttl.
func (s *TokenService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns the subject of a valid token. Any failure (bad
// signature, malformed input, expiry, unknown subject) yields ErrUnauthorized
// wrapping the underlying cause.
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	if !s.credentials.Exists(claims.Subject) {
		return "", fmt.Errorf("%w: unknown subject %q", ErrUnauthorized, claims.Subject)
	}
	return claims.Subject, nil
}

func (s *TokenService) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}
