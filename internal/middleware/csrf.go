// AngelaMos | 2026
// csrf.go

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/kallan/backend/internal/core"
)

var ErrCSRFFailed = core.NewAppError(
	core.ErrForbidden,
	"CSRF verification failed",
	http.StatusForbidden,
	"CSRF_FAILED",
)

// CSRF enforces the double-submit check: unsafe requests must echo the
// CSRF cookie value in the header.
func CSRF(cookieName, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				core.JSONError(w, ErrCSRFFailed)
				return
			}

			header := r.Header.Get(headerName)
			if header == "" ||
				subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				core.JSONError(w, ErrCSRFFailed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
