package service

import (
	"context"
	"errors"
	"testing"

	"focusflow/internal/models"
	"focusflow/pkg/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testParams = crypto.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fakeUsers struct {
	byName  map[string]models.User
	welcome map[int]string
	nextID  int
	getErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]models.User{}, welcome: map[int]string{}}
}

func (f *fakeUsers) CreateWithWelcomeTask(_ context.Context, username, hash, welcome string) (models.User, error) {
	if _, ok := f.byName[username]; ok {
		return models.User{}, models.ErrDuplicateUsername
	}
	f.nextID++
	u := models.User{ID: f.nextID, Username: username, PasswordHash: hash}
	f.byName[username] = u
	f.welcome[u.ID] = welcome
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id int, hash string) error {
	for name, u := range f.byName {
		if u.ID == id {
			u.PasswordHash = hash
			f.byName[name] = u
		}
	}
	return nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	users := newFakeUsers()
	creds, err := NewCredentials(users, testParams)
	require.NoError(t, err)
	ctx := context.Background()

	id, err := creds.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: 1, Username: "alice"}, id)
	assert.Equal(t, WelcomeTaskText, users.welcome[1])
	assert.NotEqual(t, "secret1", users.byName["alice"].PasswordHash)

	_, err = creds.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	got, err := creds.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRegisterValidation(t *testing.T) {
	creds, err := NewCredentials(newFakeUsers(), testParams)
	require.NoError(t, err)

	_, err = creds.Register(context.Background(), "", "pw")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = creds.Register(context.Background(), "bob", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRegisterDuplicate(t *testing.T) {
	creds, err := NewCredentials(newFakeUsers(), testParams)
	require.NoError(t, err)

	_, err = creds.Register(context.Background(), "bob", "pw1")
	require.NoError(t, err)
	_, err = creds.Register(context.Background(), "bob", "pw2")
	require.ErrorIs(t, err, models.ErrDuplicateUsername)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	creds, err := NewCredentials(newFakeUsers(), testParams)
	require.NoError(t, err)

	_, err = creds.Authenticate(context.Background(), "ghost", "pw")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticateStoreFailure(t *testing.T) {
	users := newFakeUsers()
	users.getErr = errors.New("connection refused")
	creds, err := NewCredentials(users, testParams)
	require.NoError(t, err)

	_, err = creds.Authenticate(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticateUpgradesLegacyHash(t *testing.T) {
	users := newFakeUsers()
	legacy, err := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	require.NoError(t, err)
	users.byName["legacy"] = models.User{ID: 99, Username: "legacy", PasswordHash: string(legacy)}

	creds, err := NewCredentials(users, testParams)
	require.NoError(t, err)

	_, err = creds.Authenticate(context.Background(), "legacy", "oldpass")
	require.NoError(t, err)

	upgraded := users.byName["legacy"].PasswordHash
	assert.False(t, crypto.NeedsRehash(upgraded, testParams))

	_, err = creds.Authenticate(context.Background(), "legacy", "oldpass")
	require.NoError(t, err)
}
