package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		hash, err := HashPassword("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", hash)
		assert.True(t, VerifyPassword("secret123", hash))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := HashPassword("samepassword")
		require.NoError(t, err)
		hash2, err := HashPassword("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, VerifyPassword("samepassword", hash1))
		assert.True(t, VerifyPassword("samepassword", hash2))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := HashPassword("")
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correctpassword")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "matching password", password: "correctpassword", hash: hash, want: true},
		{name: "wrong password", password: "wrongpassword", hash: hash, want: false},
		{name: "malformed hash", password: "correctpassword", hash: "not-a-hash", want: false},
		{name: "empty hash", password: "correctpassword", hash: "", want: false},
		{name: "plaintext stored as hash", password: "correctpassword", hash: "correctpassword", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.password, tt.hash))
		})
	}
}
