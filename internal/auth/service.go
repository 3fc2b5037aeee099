// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/middleware"
)

var (
	ErrInvalidCredentials = core.UnauthorizedError("Fel källannamn eller lösenord")
	ErrUserInactive       = core.ForbiddenError("User is inactive")
	ErrSessionInactive    = core.UnauthorizedError("User is inactive")
)

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id int64) (int, error)
}

type Service struct {
	repo   Repository
	signer *CookieSigner
	users  UserProvider
	ttl    time.Duration
}

func NewService(
	repo Repository,
	signer *CookieSigner,
	users UserProvider,
	ttl time.Duration,
) *Service {
	return &Service{
		repo:   repo,
		signer: signer,
		users:  users,
		ttl:    ttl,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// UpdatePassword clears a pending reset, so skip the upgrade until the
	// user has chosen a password of their own.
	if newHash != "" && !user.ForcePasswordReset {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	sessionID, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:           sessionID,
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	cookie, err := s.sign(session)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Cookie:             cookie,
		ExpiresAt:          session.ExpiresAt,
		ForcePasswordReset: user.ForcePasswordReset,
	}, nil
}

// Logout drops the session the cookie points at. A missing or unreadable
// cookie is not an error.
func (s *Service) Logout(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}

	claims, err := s.signer.Verify(cookie)
	if err != nil {
		return nil
	}

	if err := s.repo.RevokeByID(ctx, claims.SessionID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// SetPassword stores a new password, clears a pending forced reset and
// revokes every other session of the user. The current session survives
// with a freshly signed cookie.
func (s *Service) SetPassword(
	ctx context.Context,
	claims *middleware.SessionClaims,
	newPassword string,
) (*LoginResult, error) {
	hash, err := core.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	version, err := s.users.IncrementTokenVersion(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("increment token version: %w", err)
	}

	if err := s.repo.RevokeAllForUser(ctx, claims.UserID, claims.SessionID); err != nil {
		return nil, fmt.Errorf("revoke other sessions: %w", err)
	}

	session, err := s.repo.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session.TokenVersion = version
	if err := s.repo.Refresh(ctx, session); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	cookie, err := s.sign(session)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Cookie:    cookie,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) VerifySession(
	ctx context.Context,
	cookie string,
) (*middleware.SessionClaims, error) {
	claims, err := s.signer.Verify(cookie)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	if session.UserID != claims.UserID || session.IsExpired() {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenInvalid)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	if !user.IsActive {
		return nil, ErrSessionInactive
	}

	if session.TokenVersion < user.TokenVersion {
		//nolint:errcheck // stale session is useless either way
		_ = s.repo.RevokeByID(ctx, session.ID)
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
	}

	// A cookie issued before set-password re-signed this session.
	if claims.TokenVersion < session.TokenVersion {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
	}

	return &middleware.SessionClaims{
		UserID:             user.ID,
		SessionID:          session.ID,
		IsStaff:            user.IsStaff,
		ForcePasswordReset: user.ForcePasswordReset,
	}, nil
}

func (s *Service) sign(session *Session) (string, error) {
	cookie, err := s.signer.Sign(CookieClaims{
		SessionID:    session.ID,
		UserID:       session.UserID,
		TokenVersion: session.TokenVersion,
		ExpiresAt:    session.ExpiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return cookie, nil
}

var _ middleware.SessionVerifier = (*Service)(nil)
