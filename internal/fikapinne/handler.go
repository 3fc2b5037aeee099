// AngelaMos | 2026
// handler.go

package fikapinne

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/middleware"
)

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, active func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(active)

		r.Post("/punishments/fikapinnar/give", h.Give)
		r.Post("/punishments/fikapinnar/take", h.Take)
		r.Get("/punishments/fikapinnar/stats", h.Stats)
	})
}

func (h *Handler) Give(w http.ResponseWriter, r *http.Request) {
	var req GiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	gift, err := h.service.Give(r.Context(), middleware.GetUserID(r.Context()), req.TargetID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	resp, err := h.service.GiftResponse(r.Context(), gift)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	var req TakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	take, err := h.service.Take(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	resp, err := h.service.TakeResponse(r.Context(), take)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	targetID, ok, err := core.QueryInt64(r, "target_id")
	if err != nil {
		core.JSONError(w, err)
		return
	}
	if !ok {
		targetID = middleware.GetUserID(r.Context())
	}

	stats, err := h.service.Stats(r.Context(), targetID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, stats)
}
