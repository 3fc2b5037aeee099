// AngelaMos | 2026
// service_test.go

package user

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallan/backend/internal/core"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fixture struct {
	repo    *fakeRepo
	avatars *LocalAvatarStore
	svc     *Service
}

func newFixture(t *testing.T, maxAvatarBytes int64) *fixture {
	t.Helper()

	avatars, err := NewLocalAvatarStore(filepath.Join(t.TempDir(), "media"), "/media")
	require.NoError(t, err)

	repo := newFakeRepo()
	return &fixture{
		repo:    repo,
		avatars: avatars,
		svc:     NewService(repo, avatars, maxAvatarBytes),
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	u, err := f.svc.CreateUser(ctx, CreateUserRequest{
		Username: "  anna ",
		Password: "hemligt123",
	})
	require.NoError(t, err)

	assert.Equal(t, "anna", u.Username)
	assert.Equal(t, TierVest, u.Tier)
	assert.True(t, u.ForcePasswordReset)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "hemligt123", u.PasswordHash)

	ok, err := core.VerifyPassword("hemligt123", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "annat-lösen"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.svc.CreateUser(ctx, CreateUserRequest{Username: "bo", Password: "x12345678", Tier: "cap"})
	assert.ErrorIs(t, err, ErrInvalidTier)

	staff, err := f.svc.CreateUser(ctx, CreateUserRequest{
		Username: "bo",
		Password: "x12345678",
		Tier:     "bandana",
		IsStaff:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, TierBandana, staff.Tier)
	assert.True(t, staff.IsStaff)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	me := f.repo.seed(User{Username: "anna", IsActive: true})
	f.repo.seed(User{Username: "bert", IsActive: true})
	f.repo.seed(User{Username: "berit", IsActive: true})

	for _, limit := range []int{0, -1, MaxListLimit + 1} {
		_, err := f.svc.ListUsers(ctx, ListUsersParams{Limit: limit})
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}

	users, err := f.svc.ListUsers(ctx, ListUsersParams{Limit: 10, ExcludeID: me.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "berit", users[0].Username)

	users, err = f.svc.ListUsers(ctx, ListUsersParams{Limit: 10, Search: " BER "})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = f.svc.ListUsers(ctx, ListUsersParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpdateTierAndActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)
	u := f.repo.seed(User{Username: "cia", IsActive: true})

	_, err := f.svc.UpdateUserTier(ctx, u.ID, Tier("crown"))
	assert.ErrorIs(t, err, ErrInvalidTier)

	updated, err := f.svc.UpdateUserTier(ctx, u.ID, TierHat)
	require.NoError(t, err)
	assert.Equal(t, TierHat, updated.Tier)

	_, err = f.svc.UpdateUserTier(ctx, 404, TierHat)
	assert.ErrorIs(t, err, ErrUserNotFound)

	off, err := f.svc.SetUserActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	stored, err := f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TokenVersion, "deactivation revokes sessions")

	_, err = f.svc.SetUserActive(ctx, u.ID, true)
	require.NoError(t, err)
	stored, err = f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TokenVersion)
	assert.True(t, stored.IsActive)
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)
	u := f.repo.seed(User{Username: "dag", IsActive: true})

	_, err := f.svc.GrantPermission(ctx, u.ID, "punishments.everything")
	assert.ErrorIs(t, err, ErrUnknownPerm)

	_, err = f.svc.GrantPermission(ctx, 404, PermManageFikapinnar)
	assert.ErrorIs(t, err, ErrUserNotFound)

	granted, err := f.svc.GrantPermission(ctx, u.ID, PermManageFikapinnar)
	require.NoError(t, err)
	assert.True(t, granted.HasPermission(PermManageFikapinnar))
	assert.Equal(t, []string{PermManageFikapinnar}, granted.EffectivePermissions())

	revoked, err := f.svc.RevokePermission(ctx, u.ID, PermManageFikapinnar)
	require.NoError(t, err)
	assert.False(t, revoked.HasPermission(PermManageFikapinnar))
}

func TestHasPermission(t *testing.T) {
	super := &User{IsActive: true, IsSuperuser: true}
	assert.True(t, super.HasPermission(PermManageFikapinnar))
	assert.Equal(t, KnownPermissions, super.EffectivePermissions())

	inactive := &User{IsSuperuser: true, Permissions: []string{PermManageFikapinnar}}
	assert.False(t, inactive.HasPermission(PermManageFikapinnar))
	assert.Empty(t, inactive.EffectivePermissions())
}

func TestTierRank(t *testing.T) {
	assert.Less(t, TierBandana.Rank(), TierHat.Rank())
	assert.Less(t, TierHat.Rank(), TierVest.Rank())
	assert.Zero(t, Tier("cap").Rank())
	assert.False(t, Tier("cap").Valid())
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)
	u := f.repo.seed(User{Username: "eva", IsActive: true})

	t.Run("rejects declared non-image", func(t *testing.T) {
		_, err := f.svc.UploadAvatar(ctx, u.ID, "a.txt", "text/plain", 4, strings.NewReader("text"))
		assert.ErrorIs(t, err, ErrNotAnImage)
	})

	t.Run("rejects sniffed non-image", func(t *testing.T) {
		_, err := f.svc.UploadAvatar(ctx, u.ID, "a.png", "image/png", 11, strings.NewReader("hello world"))
		assert.ErrorIs(t, err, ErrNotAnImage)
	})

	t.Run("rejects declared size", func(t *testing.T) {
		_, err := f.svc.UploadAvatar(ctx, u.ID, "a.png", "image/png", 2048, bytes.NewReader(pngHeader))
		assert.ErrorIs(t, err, ErrAvatarTooLarge)
	})

	t.Run("rejects oversized stream", func(t *testing.T) {
		body := append(bytes.Clone(pngHeader), make([]byte, 2048)...)
		_, err := f.svc.UploadAvatar(ctx, u.ID, "a.png", "", 0, bytes.NewReader(body))
		assert.ErrorIs(t, err, ErrAvatarTooLarge)

		entries, _ := os.ReadDir(filepath.Join(f.avatars.Dir(), "users", "1", "avatar"))
		assert.Empty(t, entries, "oversized file is discarded")
	})

	var first string
	t.Run("stores and replaces", func(t *testing.T) {
		updated, err := f.svc.UploadAvatar(ctx, u.ID, "Me.PNG", "image/png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
		require.NoError(t, err)
		require.NotNil(t, updated.AvatarPath)
		first = *updated.AvatarPath
		assert.True(t, strings.HasPrefix(first, "users/1/avatar/"))
		assert.True(t, strings.HasSuffix(first, ".png"))
		assert.FileExists(t, filepath.Join(f.avatars.Dir(), first))

		mini := ToMiniResponse(updated, f.svc.AvatarURLs())
		require.NotNil(t, mini.AvatarURL)
		assert.Equal(t, "/media/"+first, *mini.AvatarURL)

		again, err := f.svc.UploadAvatar(ctx, u.ID, "me.png", "image/png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
		require.NoError(t, err)
		assert.NotEqual(t, first, *again.AvatarPath)
		assert.NoFileExists(t, filepath.Join(f.avatars.Dir(), first))
		assert.FileExists(t, filepath.Join(f.avatars.Dir(), *again.AvatarPath))
	})
}

func TestMiniResponseDefaults(t *testing.T) {
	mini := ToMiniResponse(&User{ID: 1, Username: "frej"}, nil)
	assert.Equal(t, "bandana", mini.Tier)
	assert.Nil(t, mini.AvatarURL)
}

func TestAuthUserProvider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)
	u := f.repo.seed(User{Username: "gun", IsActive: true, ForcePasswordReset: true, TokenVersion: 2})

	info, err := f.svc.GetByUsername(ctx, " gun ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, info.ID)
	assert.True(t, info.ForcePasswordReset)
	assert.Equal(t, 2, info.TokenVersion)

	require.NoError(t, f.svc.UpdatePassword(ctx, u.ID, "new-hash"))
	stored, err := f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.ForcePasswordReset)

	version, err := f.svc.IncrementTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}
