// AngelaMos | 2026
// handler.go

package punishment

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

		r.Post("/punishments/events", h.CreateEvent)
		r.Get("/punishments/events", h.ListEvents)
		r.Post("/punishments/events/{eventID}/confirm", h.ConfirmEvent)
		r.Delete("/punishments/events/{eventID}", h.DeleteEvent)
		r.Get("/punishments/stats", h.Stats)
		r.Post("/punishments/take", h.Take)
	})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	event, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	h.writeEvent(w, r, http.StatusCreated, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	var err error

	if filter.Pending, err = core.QueryBool(r, "pending", false); err != nil {
		core.JSONError(w, err)
		return
	}
	if filter.Confirmed, err = core.QueryBool(r, "confirmed", false); err != nil {
		core.JSONError(w, err)
		return
	}

	limit, ok, err := core.QueryInt64(r, "limit")
	if err != nil {
		core.JSONError(w, err)
		return
	}
	if ok {
		l := int(limit)
		filter.Limit = &l
	}

	targetID, ok, err := core.QueryInt64(r, "target_id")
	if err != nil {
		core.JSONError(w, err)
		return
	}
	if ok {
		filter.TargetID = &targetID
	}

	events, err := h.service.List(r.Context(), filter)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	out, err := h.service.EventResponses(r.Context(), events...)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, out)
}

func (h *Handler) ConfirmEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := core.URLParamID(r, "eventID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	event, err := h.service.Confirm(r.Context(), middleware.GetUserID(r.Context()), eventID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	h.writeEvent(w, r, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := core.URLParamID(r, "eventID")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), eventID); err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.NoContent(w)
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

func (h *Handler) writeEvent(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	event *Event,
) {
	out, err := h.service.EventResponses(r.Context(), *event)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.JSON(w, status, out[0])
}
