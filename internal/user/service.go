// AngelaMos | 2026
// service.go

package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kallan/backend/internal/auth"
	"github.com/kallan/backend/internal/core"
)

var (
	ErrInvalidLimit   = core.BadRequestError("INVALID_LIMIT")
	ErrInvalidTier    = core.BadRequestError("invalid tier")
	ErrUnknownPerm    = core.BadRequestError("unknown permission")
	ErrNotAnImage     = core.BadRequestError("Profilbild måste vara en bild")
	ErrAvatarTooLarge = core.BadRequestError("Profilbild för stor (max 5MB)")
	ErrUsernameTaken  = core.DuplicateError("username")
	ErrUserNotFound   = core.NotFoundError("user")
)

type Service struct {
	repo           Repository
	avatars        AvatarStore
	maxAvatarBytes int64
}

func NewService(repo Repository, avatars AvatarStore, maxAvatarBytes int64) *Service {
	return &Service{
		repo:           repo,
		avatars:        avatars,
		maxAvatarBytes: maxAvatarBytes,
	}
}

func (s *Service) AvatarURLs() AvatarURLs {
	return s.avatars
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// LockUser loads the user under a row lock; callers must be inside a
// transaction for the lock to outlive the call.
func (s *Service) LockUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Service) GetUsers(
	ctx context.Context,
	ids []int64,
) (map[int64]User, error) {
	return s.repo.GetMany(ctx, dedupe(ids))
}

func (s *Service) ActiveUserIDsExcept(
	ctx context.Context,
	exclude ...int64,
) ([]int64, error) {
	return s.repo.ListActiveIDsExcept(ctx, exclude...)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	if params.Limit < 1 || params.Limit > MaxListLimit {
		return nil, ErrInvalidLimit
	}
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tier := TierVest
	if req.Tier != "" {
		tier = Tier(req.Tier)
	}
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}

	u := &User{
		Username:           strings.TrimSpace(req.Username),
		PasswordHash:       hash,
		Tier:               tier,
		ForcePasswordReset: true,
		IsActive:           true,
		IsStaff:            req.IsStaff,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return u, nil
}

func (s *Service) UpdateUserTier(
	ctx context.Context,
	id int64,
	tier Tier,
) (*User, error) {
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Tier = tier
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, notFound(err)
	}

	return u, nil
}

func (s *Service) SetUserActive(
	ctx context.Context,
	id int64,
	active bool,
) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.IsActive = active
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, notFound(err)
	}

	if !active {
		if _, err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
			return nil, notFound(err)
		}
	}

	return u, nil
}

func (s *Service) GrantPermission(
	ctx context.Context,
	id int64,
	perm string,
) (*User, error) {
	if !IsKnownPermission(perm) {
		return nil, ErrUnknownPerm
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.GrantPermission(ctx, id, perm); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Service) RevokePermission(
	ctx context.Context,
	id int64,
	perm string,
) (*User, error) {
	if !IsKnownPermission(perm) {
		return nil, ErrUnknownPerm
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.RevokePermission(ctx, id, perm); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// UploadAvatar replaces the user's avatar. The previous file is removed
// best-effort once the new path is stored.
func (s *Service) UploadAvatar(
	ctx context.Context,
	id int64,
	filename, contentType string,
	size int64,
	r io.Reader,
) (*User, error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}
	if size > s.maxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	limited := &io.LimitedReader{R: r, N: s.maxAvatarBytes + 1}
	sniff := make([]byte, 512)
	n, err := io.ReadFull(limited, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	sniff = sniff[:n]
	if !strings.HasPrefix(http.DetectContentType(sniff), "image/") {
		return nil, ErrNotAnImage
	}

	body := io.MultiReader(bytes.NewReader(sniff), limited)
	newPath, err := s.avatars.Save(id, filename, body)
	if err != nil {
		return nil, err
	}
	if limited.N <= 0 {
		_ = s.avatars.Delete(newPath) //nolint:errcheck // discard oversized upload
		return nil, ErrAvatarTooLarge
	}

	if err := s.repo.SetAvatar(ctx, id, &newPath); err != nil {
		_ = s.avatars.Delete(newPath) //nolint:errcheck // discard orphan on failure
		return nil, notFound(err)
	}

	if old := u.AvatarPath; old != nil && *old != "" && *old != newPath {
		if err := s.avatars.Delete(*old); err != nil {
			slog.WarnContext(ctx, "failed to delete old avatar",
				"user_id", id,
				"error", err,
			)
		}
	}

	u.AvatarPath = &newPath
	return u, nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	id int64,
) (int, error) {
	return s.repo.IncrementTokenVersion(ctx, id)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                 u.ID,
		Username:           u.Username,
		PasswordHash:       u.PasswordHash,
		IsActive:           u.IsActive,
		IsStaff:            u.IsStaff,
		ForcePasswordReset: u.ForcePasswordReset,
		TokenVersion:       u.TokenVersion,
	}
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ auth.UserProvider = (*Service)(nil)
