package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "apiscope"

// TokenSigner issues and verifies session credentials: HS256 JWTs with the
// user id as subject. The secret and TTL are injected at construction so
// callers stay independently testable.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner constructs a signer. The TTL must be positive.
func NewTokenSigner(secret string, ttl time.Duration) (*TokenSigner, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: token secret is not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source. Only intended for tests.
func (s *TokenSigner) WithClock(fn func() time.Time) *TokenSigner {
	if fn != nil {
		s.now = fn
	}
	return s
}

// Issue signs a JWT for the given user.
func (s *TokenSigner) Issue(userID int64) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, errors.New("auth: userID is required")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and required claims and returns the embedded
// user id. Any failure collapses to ErrInvalidToken so the caller leaks
// nothing about why a credential was rejected.
func (s *TokenSigner) Verify(token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if err := s.validateClaims(claims); err != nil {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *TokenSigner) validateClaims(claims *jwt.RegisteredClaims) error {
	if claims.Issuer != issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := s.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return errors.New("token not yet valid")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
