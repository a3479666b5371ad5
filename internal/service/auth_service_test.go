package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checking-account-api/internal/errors"
	"checking-account-api/internal/repository"
)

func newAuthFixture(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	store := repository.NewMemoryStore()
	users := NewUserService(store.User(), testLogger())
	auth := NewAuthService(store.User(), "test-secret", testLogger())
	return auth, users
}

func TestAuthenticateIssuesVerifiableToken(t *testing.T) {
	auth, users := newAuthFixture(t)

	created, err := users.CreateUser("Maria Silva", "maria@example.com", "s3cret")
	require.NoError(t, err)

	user, token, err := auth.Authenticate("maria@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	require.NotEmpty(t, token)

	userID, err := auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	auth, users := newAuthFixture(t)

	_, err := users.CreateUser("Maria Silva", "maria@example.com", "s3cret")
	require.NoError(t, err)

	_, _, err = auth.Authenticate("maria@example.com", "wrong")
	assert.Equal(t, errors.ErrInvalidCredentials, err)
}

func TestAuthenticateUnknownEmailSameError(t *testing.T) {
	auth, _ := newAuthFixture(t)

	// unknown email and wrong password are indistinguishable
	_, _, err := auth.Authenticate("nobody@example.com", "whatever")
	assert.Equal(t, errors.ErrInvalidCredentials, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	auth, _ := newAuthFixture(t)

	_, err := auth.VerifyToken("not-a-token")
	assert.Equal(t, errors.ErrUnauthorized, err)
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	auth, users := newAuthFixture(t)

	_, err := users.CreateUser("Maria Silva", "maria@example.com", "s3cret")
	require.NoError(t, err)

	_, token, err := auth.Authenticate("maria@example.com", "s3cret")
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	other := NewAuthService(store.User(), "other-secret", testLogger())
	_, err = other.VerifyToken(token)
	assert.Equal(t, errors.ErrUnauthorized, err)
}
