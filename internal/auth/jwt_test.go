// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallan/backend/internal/config"
	"github.com/kallan/backend/internal/core"
)

func newTestSigner(t *testing.T, issuer string) *CookieSigner {
	t.Helper()

	privatePEM, _, err := GenerateKeyPairPEM()
	require.NoError(t, err)

	signer, err := NewCookieSignerFromPEM(privatePEM, issuer)
	require.NoError(t, err)
	return signer
}

func TestCookieSignerRoundTrip(t *testing.T) {
	signer := newTestSigner(t, "kallan")
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	value, err := signer.Sign(CookieClaims{
		SessionID:    "sid-1",
		UserID:       42,
		TokenVersion: 3,
		ExpiresAt:    expires,
	})
	require.NoError(t, err)

	claims, err := signer.Verify(value)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.True(t, claims.ExpiresAt.Equal(expires))
	assert.Len(t, signer.KeyID(), 8)
}

func TestCookieSignerRejects(t *testing.T) {
	signer := newTestSigner(t, "kallan")
	valid := CookieClaims{SessionID: "sid", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("garbage", func(t *testing.T) {
		_, err := signer.Verify("not-a-token")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("other key", func(t *testing.T) {
		value, err := newTestSigner(t, "kallan").Sign(valid)
		require.NoError(t, err)

		_, err = signer.Verify(value)
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("other issuer", func(t *testing.T) {
		privatePEM, _, err := GenerateKeyPairPEM()
		require.NoError(t, err)

		ours, err := NewCookieSignerFromPEM(privatePEM, "kallan")
		require.NoError(t, err)
		theirs, err := NewCookieSignerFromPEM(privatePEM, "someone-else")
		require.NoError(t, err)

		value, err := theirs.Sign(valid)
		require.NoError(t, err)

		_, err = ours.Verify(value)
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
		assert.NotErrorIs(t, err, core.ErrTokenExpired)
	})

	t.Run("expired", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = time.Now().Add(-time.Hour)

		value, err := signer.Sign(expired)
		require.NoError(t, err)

		_, err = signer.Verify(value)
		assert.ErrorIs(t, err, core.ErrTokenExpired)
	})
}

func TestGenerateKeyPairWritesFiles(t *testing.T) {
	dir := t.TempDir()
	privPath := filepath.Join(dir, "keys", "private.pem")
	pubPath := filepath.Join(dir, "keys", "public.pem")

	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	info, err := os.Stat(privPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	pub, err := os.ReadFile(pubPath)
	require.NoError(t, err)
	assert.Contains(t, string(pub), "PUBLIC KEY")

	signer, err := NewCookieSigner(config.SessionConfig{PrivateKeyPath: privPath, Issuer: "kallan"})
	require.NoError(t, err)
	assert.NotEmpty(t, signer.KeyID())
}
