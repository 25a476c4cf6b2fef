package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendtrack/internal/core"
)

// UserStore is the slice of the repository the resolver needs.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	CreateUser(ctx context.Context, username, password string) (core.User, error)
}

// Resolver produces a canonical user record from either local credentials or
// a trusted OAuth profile email, creating the record on first OAuth login.
type Resolver struct {
	store UserStore
}

func NewResolver(store UserStore) *Resolver {
	return &Resolver{store: store}
}

// RegisterLocal creates a user from a username and plaintext password.
// An already-registered username returns core.ErrUsernameTaken; the handler
// turns that into the same silent login redirect as always.
func (r *Resolver) RegisterLocal(ctx context.Context, username, password string) (core.User, error) {
	_, err := r.store.GetUserByUsername(ctx, username)
	if err == nil {
		return core.User{}, core.ErrUsernameTaken
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return core.User{}, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	// The unique constraint catches the window between lookup and insert.
	user, err := r.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// LoginLocal authenticates a username and plaintext password. Unknown user
// and wrong password both come back as core.ErrInvalidCredentials; the HTTP
// layer never distinguishes them.
func (r *Resolver) LoginLocal(ctx context.Context, username, password string) (core.User, error) {
	user, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.User{}, core.ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("lookup username: %w", err)
	}

	verified, err := VerifyCredentials(user, password)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidCredentials) {
			// Computation error, not a mismatch: log and fail closed.
			slog.ErrorContext(ctx, "Password verification error", "username", username, "error", err)
		}
		return core.User{}, core.ErrInvalidCredentials
	}
	return verified, nil
}

// ResolveOAuth maps a trusted provider email onto a user record. A first
// login creates the record with the OAuth sentinel in the password column;
// an existing record is returned as authenticated without any password
// check, whatever its origin. That includes accounts originally created by
// local registration.
func (r *Resolver) ResolveOAuth(ctx context.Context, email string) (core.User, error) {
	user, err := r.store.GetUserByUsername(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return core.User{}, fmt.Errorf("lookup username: %w", err)
	}

	user, err = r.store.CreateUser(ctx, email, core.OAuthPassword)
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			// Lost a race against a concurrent first login for the same email.
			return r.store.GetUserByUsername(ctx, email)
		}
		return core.User{}, fmt.Errorf("create oauth user: %w", err)
	}

	slog.InfoContext(ctx, "User created from OAuth profile", "username", email)
	return user, nil
}
