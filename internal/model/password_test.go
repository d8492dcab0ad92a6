package model

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("secret")
	require.NoError(t, err)

	t.Run("fixed-length hex, never plaintext", func(t *testing.T) {
		assert.Len(t, digest, digestHexLen)
		_, err := hex.DecodeString(digest)
		assert.NoError(t, err)
		assert.NotContains(t, digest, "secret")
	})

	t.Run("salted: same password, different digests", func(t *testing.T) {
		other, err := HashPassword("secret")
		require.NoError(t, err)
		assert.NotEqual(t, digest, other)
	})

	t.Run("verify round trip", func(t *testing.T) {
		assert.True(t, VerifyPassword("secret", digest))
		assert.False(t, VerifyPassword("wrong", digest))
	})

	t.Run("verify rejects malformed digests", func(t *testing.T) {
		assert.False(t, VerifyPassword("secret", ""))
		assert.False(t, VerifyPassword("secret", "zz"))
		assert.False(t, VerifyPassword("secret", digest[:10]))
	})
}
