package core

import "errors"

// Transaction types that participate in totals. Type is stored as the caller
// supplied it; anything outside these two values is kept but never aggregated.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// OAuthPassword is the sentinel stored in the password column for accounts
// created through Google sign-in. It never verifies as a bcrypt hash, so such
// accounts cannot authenticate locally.
const OAuthPassword = "google"

type (
	// User is an account record. Password holds the bcrypt hash for local
	// accounts or the OAuthPassword sentinel for federated ones.
	User struct {
		ID       int64
		Username string
		Password string
	}

	// Transaction is one ledger entry. Date and Category are free text,
	// persisted exactly as submitted. Entries are immutable once created:
	// the ledger supports insert, list and delete, never update.
	Transaction struct {
		ID       int64
		Date     string
		Category string
		Type     string
		Amount   Money
		UserID   int64
	}

	// Money is a fixed-point monetary amount in cents.
	Money struct {
		Cents int64
	}
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// IsOAuthOnly reports whether the account was created through Google sign-in
// and carries no local password hash.
func (u User) IsOAuthOnly() bool {
	return u.Password == OAuthPassword
}
