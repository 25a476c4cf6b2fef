package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
)

// fakeUserStore is an in-memory UserStore with the repository's semantics.
type fakeUserStore struct {
	users  map[string]core.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]core.User)}
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	u, ok := f.users[username]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, password string) (core.User, error) {
	if _, ok := f.users[username]; ok {
		return core.User{}, core.ErrUsernameTaken
	}
	f.nextID++
	u := core.User{ID: f.nextID, Username: username, Password: password}
	f.users[username] = u
	return u, nil
}

func TestRegisterLocal(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	user, err := r.RegisterLocal(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)
	assert.Len(t, store.users, 1)

	// The stored value is a hash that verifies the original password only.
	_, err = VerifyCredentials(user, "hunter2")
	assert.NoError(t, err)
	_, err = VerifyCredentials(user, "other")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestRegisterLocalDuplicate(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	_, err := r.RegisterLocal(ctx, "a@example.com", "first")
	require.NoError(t, err)

	_, err = r.RegisterLocal(ctx, "a@example.com", "second")
	assert.ErrorIs(t, err, core.ErrUsernameTaken)
	assert.Len(t, store.users, 1, "duplicate registration must not create a second row")
}

func TestLoginLocal(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	created, err := r.RegisterLocal(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)

	user, err := r.LoginLocal(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Unknown user and wrong password are indistinguishable.
	_, errUnknown := r.LoginLocal(ctx, "nobody@example.com", "hunter2")
	_, errWrong := r.LoginLocal(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, errUnknown, core.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, core.ErrInvalidCredentials)
}

func TestLoginLocalRejectsOAuthOnlyAccount(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	_, err := r.ResolveOAuth(ctx, "g@example.com")
	require.NoError(t, err)

	// The sentinel never verifies, not even when submitted literally.
	_, err = r.LoginLocal(ctx, "g@example.com", core.OAuthPassword)
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestResolveOAuthFirstLogin(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	user, err := r.ResolveOAuth(ctx, "g@example.com")
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", user.Username)
	assert.Equal(t, core.OAuthPassword, user.Password)
	assert.True(t, user.IsOAuthOnly())
}

func TestResolveOAuthBypassesPasswordForLocalAccount(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store)
	ctx := context.Background()

	local, err := r.RegisterLocal(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)

	// A trusted provider email matching a locally registered account logs in
	// as that account with no password check at all.
	user, err := r.ResolveOAuth(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, local.ID, user.ID)
	assert.Equal(t, local.Password, user.Password)
	assert.Len(t, store.users, 1)
}
