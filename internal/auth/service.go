package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service authenticates credentials and issues session tokens. Authorization
// of subsequent calls happens in Guard, off the token alone.
type Service struct {
	users UserStore
	codec *Codec
}

// NewService wires the login flow to the identity store and token codec.
func NewService(users UserStore, codec *Codec) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if codec == nil {
		return nil, errors.New("codec is required")
	}
	return &Service{users: users, codec: codec}, nil
}

// LoginResult carries the authenticated user and its freshly issued token.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Login verifies the credentials against the active user record and returns
// a signed token embedding the user's role set. Unknown users, inactive users
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.users.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrUnauthorized
	}

	token, err := s.codec.Issue(user.Username, user.Roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.codec.TTL()),
	}, nil
}

// RegisterUser hashes the password and stores a new identity record.
func (s *Service) RegisterUser(ctx context.Context, username, password, email, fullName string, roles []Role) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	user := &User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
