// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/kallan/backend/internal/core"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	ClaimsKey contextKey = "session_claims"
)

type SessionVerifier interface {
	VerifySession(ctx context.Context, cookie string) (*SessionClaims, error)
}

type SessionClaims struct {
	UserID             int64
	SessionID          string
	IsStaff            bool
	ForcePasswordReset bool
}

// Authenticator resolves the session cookie into claims on the request
// context and rejects the request with 401 when it cannot.
func Authenticator(
	verifier SessionVerifier,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			claims, err := verifier.VerifySession(r.Context(), cookie.Value)
			if err != nil {
				handleAuthError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireNoPasswordReset blocks an authenticated user who still has to set
// a new password. Mount it after Authenticator on every route except the
// ones needed to complete the reset.
func RequireNoPasswordReset(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if claims.ForcePasswordReset {
			core.JSONError(w, core.PasswordResetRequiredError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if !claims.IsStaff {
			core.JSONError(w, core.ForbiddenError("staff only"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid), errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.WriteError(w, r, err)
	}
}

func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, ClaimsKey, claims)
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetClaims(ctx context.Context) *SessionClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*SessionClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != 0
}
