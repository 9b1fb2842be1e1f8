package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword(hash, "s3cret-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", 1)

	token, err := m.IssueToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestManager_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", 1)
	verifier := NewManager("secret-b", 1)

	token, err := issuer.IssueToken("user-123")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_VerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", 1)

	_, err := m.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_ExpiryDefault(t *testing.T) {
	m := NewManager("test-secret", 0)
	assert.Equal(t, 24, m.expiryHours)
}
