// Package auth federates local-credential and Google identities into user
// records and manages the server-side sessions that gate protected routes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"spendtrack/internal/core"
)

// BcryptCost is the fixed work factor for password hashes, strong enough for
// interactive login.
const BcryptCost = 10

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyCredentials checks a submitted password against a stored user record.
// It is a pure function: the caller looks the record up and issues the
// session. A mismatch returns core.ErrInvalidCredentials; any other bcrypt
// failure (malformed hash, including the OAuth sentinel) fails closed with
// the underlying error so the caller can log it.
func VerifyCredentials(user core.User, password string) (core.User, error) {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return core.User{}, core.ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("compare password hash: %w", err)
	}
	return user, nil
}
