package auth

import (
	"context"
	"strings"
	"time"
)

// User is a registered identity. PasswordHash never leaves this package's
// storage boundary; API responses are built from the other fields.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	// CreateUser inserts the user and fills in ID and CreatedAt. Returns
	// ErrEmailTaken when the normalized email already exists.
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)
}

// NormalizeEmail lower-cases and trims an email address. Every lookup and
// insert goes through this, which is what makes email uniqueness
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
