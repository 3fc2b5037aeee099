// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/middleware"
)

const avatarFormField = "avatar"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the directory endpoints. authenticator alone
// guards /users/me so a user with a pending reset can still read it;
// everything else also needs active, which rejects a pending reset.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, active func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/users/me", h.GetMe)

		r.Group(func(r chi.Router) {
			r.Use(active)

			r.Get("/users", h.ListUsers)
			r.Post("/users/me/avatar", h.UploadAvatar)
			r.Get("/users/{userID}", h.GetUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToMeResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := core.QueryInt(r, "limit", DefaultListLimit)
	if err != nil {
		core.JSONError(w, ErrInvalidLimit)
		return
	}

	excludeMe, err := core.QueryBool(r, "exclude_me", true)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	params := ListUsersParams{
		Search: r.URL.Query().Get("q"),
		Limit:  limit,
	}
	if excludeMe {
		params.ExcludeID = middleware.GetUserID(r.Context())
	}

	users, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToMiniResponseList(users, h.service.AvatarURLs()))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.URLParamID(r, "userID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToMiniResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	// The multipart envelope adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.service.maxAvatarBytes+1<<20)

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, ErrAvatarTooLarge)
			return
		}
		core.BadRequest(w, "avatar file required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only upload

	user, err := h.service.UploadAvatar(
		r.Context(),
		middleware.GetUserID(r.Context()),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToMeResponse(user, h.service.AvatarURLs()))
}

// RegisterAdminRoutes mounts staff-only user management.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, active, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(active)
		r.Use(staffOnly)

		r.Post("/", h.CreateUser)
		r.Get("/{userID}", h.AdminGetUser)
		r.Put("/{userID}/tier", h.UpdateUserTier)
		r.Put("/{userID}/active", h.UpdateUserActive)
		r.Post("/{userID}/permissions/{perm}", h.GrantPermission)
		r.Delete("/{userID}/permissions/{perm}", h.RevokePermission)
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Created(w, ToAdminUserResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.URLParamID(r, "userID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) UpdateUserTier(w http.ResponseWriter, r *http.Request) {
	id, err := core.URLParamID(r, "userID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req UpdateUserTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUserTier(r.Context(), id, Tier(req.Tier))
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) UpdateUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := core.URLParamID(r, "userID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req UpdateUserActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.SetUserActive(r.Context(), id, *req.Active)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.service.AvatarURLs()))
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.service.GrantPermission)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.service.RevokePermission)
}

func (h *Handler) changePermission(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id int64, perm string) (*User, error),
) {
	id, err := core.URLParamID(r, "userID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := apply(r.Context(), id, chi.URLParam(r, "perm"))
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.service.AvatarURLs()))
}
