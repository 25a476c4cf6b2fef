package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	user := core.User{ID: 1, Username: "a@example.com", Password: hash}

	verified, err := VerifyCredentials(user, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user, verified)

	_, err = VerifyCredentials(user, "hunter3")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestVerifyCredentialsFailsClosedOnBadHash(t *testing.T) {
	// The OAuth sentinel is not a bcrypt hash; verification must fail with a
	// computation error, never succeed.
	user := core.User{Password: core.OAuthPassword}
	_, err := VerifyCredentials(user, core.OAuthPassword)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrInvalidCredentials)
}
