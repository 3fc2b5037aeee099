// AngelaMos | 2026
// handler.go

package push

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
	r.Route("/push", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(active)

		r.Get("/vapid-public-key", h.VAPIDPublicKey)
		r.Post("/subscribe", h.Subscribe)
		r.Post("/unsubscribe", h.Unsubscribe)
	})
}

func (h *Handler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	core.OK(w, VAPIDKeyResponse{PublicKey: h.service.VAPIDPublicKey()})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	_, err := h.service.Subscribe(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
		r.UserAgent(),
	)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, OKResponse{OK: true})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	_, err := h.service.Unsubscribe(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.Endpoint,
	)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, OKResponse{OK: true})
}
