// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/middleware"
)

const csrfCookieMaxAge = 365 * 24 * time.Hour

type CookieConfig struct {
	SessionName string
	CSRFName    string
	Secure      bool
}

type Handler struct {
	service   *Service
	cookies   CookieConfig
	validator *validator.Validate
}

func NewHandler(service *Service, cookies CookieConfig) *Handler {
	return &Handler{
		service:   service,
		cookies:   cookies,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the session endpoints. Only /users/csrf is exempt
// from the CSRF check, and set-password stays reachable while a forced
// reset is pending.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	csrf func(http.Handler) http.Handler,
	authenticator func(http.Handler) http.Handler,
	loginLimiter func(http.Handler) http.Handler,
) {
	r.Post("/users/csrf", h.CSRF)

	r.Group(func(r chi.Router) {
		r.Use(csrf)

		r.With(loginLimiter).Post("/users/login", h.Login)
		r.Post("/users/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/users/set-password", h.SetPassword)
		})
	})
}

func (h *Handler) CSRF(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookies.CSRFName); err == nil && c.Value != "" {
		core.NoContent(w)
		return
	}

	token, err := core.GenerateSecureToken(32)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.CSRFName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(csrfCookieMaxAge),
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	core.NoContent(w)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		middleware.ClientIP(r),
	)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	h.setSessionCookie(w, result)

	core.OK(w, LoginResponse{
		OK:                 true,
		ForcePasswordReset: result.ForcePasswordReset,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var value string
	if c, err := r.Cookie(h.cookies.SessionName); err == nil {
		value = c.Value
	}

	if err := h.service.Logout(r.Context(), value); err != nil {
		core.WriteError(w, r, err)
		return
	}

	h.clearSessionCookie(w)

	core.OK(w, OKResponse{OK: true})
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return
	}

	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.SetPassword(r.Context(), claims, req.NewPassword)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	h.setSessionCookie(w, result)

	core.OK(w, OKResponse{OK: true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, result *LoginResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.SessionName,
		Value:    result.Cookie,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.SessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
