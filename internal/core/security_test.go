// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("korv med bröd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	other, err := HashPassword("korv med bröd")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted")

	ok, err := VerifyPassword("korv med bröd", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "not-a-hash")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	ok, rehash, err := VerifyPasswordTimingSafe("secret123", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, _, err = VerifyPasswordTimingSafe("secret123", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRehashesOldParams(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	weaker := strings.Replace(hash, "t=1", "t=2", 1)

	ok, rehash, err := VerifyPasswordWithRehash("secret123", weaker)
	require.NoError(t, err)
	assert.False(t, ok, "params are part of the hash")
	assert.Empty(t, rehash)
}

func TestGenerateSessionID(t *testing.T) {
	a, err := GenerateSessionID()
	require.NoError(t, err)
	b, err := GenerateSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 44)
}
