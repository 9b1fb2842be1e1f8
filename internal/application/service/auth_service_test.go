package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/auth"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthService() (*AuthService, *storage.MockRepository) {
	repo := storage.NewMockRepository()
	tokens := auth.NewManager("test-secret", 1)
	return NewAuthService(repo, tokens, testLogger()), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Register("Kata@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "kata@example.com", user.Email, "email is normalized")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, loggedIn, err := svc.Login("kata@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register("kata@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register("KATA@example.com", "other-password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register("kata@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login("kata@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, _, err := svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown email and wrong password must be indistinguishable")
}
