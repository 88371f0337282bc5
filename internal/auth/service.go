package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Session is the result of a successful registration or login.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Service is the session issuer: it turns verified identities into signed
// bearer credentials and resolves incoming credentials back to identities.
type Service struct {
	store  Store
	signer *TokenSigner
}

// NewService constructs a Service from its collaborators.
func NewService(store Store, signer *TokenSigner) *Service {
	return &Service{store: store, signer: signer}
}

// Register creates a new identity and issues a session credential. The email
// is normalized before the uniqueness check; a duplicate surfaces as
// ErrEmailTaken.
func (s *Service) Register(ctx context.Context, name, email, password string) (Session, error) {
	email = NormalizeEmail(email)

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil && err != ErrNotFound {
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return Session{}, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return Session{}, err
	}

	return s.issue(user)
}

// Login verifies credentials and issues a session credential. Unknown email
// and wrong password both collapse to ErrInvalidCredentials so accounts
// cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindUserByEmail(ctx, NormalizeEmail(email))
	if err == ErrNotFound {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Verify resolves a bearer token to a user id.
func (s *Service) Verify(token string) (int64, error) {
	return s.signer.Verify(token)
}

// Me loads the identity behind an authenticated user id.
func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.store.FindUserByID(ctx, userID)
}

func (s *Service) issue(user *User) (Session, error) {
	token, expiresAt, err := s.signer.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
