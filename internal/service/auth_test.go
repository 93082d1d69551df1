package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Tokens(t *testing.T) {
	t.Run("A generated token parses back to the user ID", func(t *testing.T) {
		// Given: an auth service with a secret
		auth := NewAuthService("test-secret")

		// When: generating and parsing a token
		token, err := auth.GenerateToken("user-42", "player@example.com")
		require.NoError(t, err)

		userID, err := auth.ParseToken(token)

		// Then: the user ID survives the round trip
		require.NoError(t, err)
		assert.Equal(t, "user-42", userID)
	})

	t.Run("A token signed with another secret is rejected", func(t *testing.T) {
		// Given: tokens minted under a different secret
		token, err := NewAuthService("other-secret").GenerateToken("user-42", "player@example.com")
		require.NoError(t, err)

		// When: parsing with the real secret
		_, err = NewAuthService("test-secret").ParseToken(token)

		// Then: parsing fails
		require.Error(t, err)
	})

	t.Run("Garbage is rejected", func(t *testing.T) {
		_, err := NewAuthService("test-secret").ParseToken("not-a-token")

		require.Error(t, err)
	})
}
