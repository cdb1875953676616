package auth

import (
	"context"
	"time"
)

// User is an identity record owned by the user store. The authorization core
// only reads it: roles are embedded into a token at login and re-derived from
// the token on every subsequent call.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Roles        []Role    `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuditID exposes the user's identifier to the audit trail.
func (u *User) AuditID() string {
	return u.ID
}

// UserStore is the identity lookup consumed by the login flow and by the
// audit recorder's actor cross-check.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindActiveByUsername(ctx context.Context, username string) (*User, error)
}
