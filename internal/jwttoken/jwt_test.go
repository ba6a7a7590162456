package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "contactsadmin/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := New("test-signing-key", "contacts-admin", "contacts-admin-clients")

	token, err := svc.GenerateToken("USER_ONE", "LEI", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "USER_ONE", claims.Username)
	assert.Equal(t, "LEI", claims.Caseload)
	assert.NotEmpty(t, claims.SessionID)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := New("test-signing-key", "contacts-admin", "contacts-admin-clients")

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken("USER_ONE", "", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := New("another-key", "contacts-admin", "contacts-admin-clients")
		token, err := other.GenerateToken("USER_ONE", "", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
