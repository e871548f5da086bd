package shift

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/shifts", func(r chi.Router) {
		r.Use(web.RequireRole(web.RoleManager, web.RoleCashier))
		r.Post("/open", h.open)
		r.Post("/close", h.close)
		r.Get("/current", h.current)
		r.With(web.RequireRole(web.RoleManager)).Get("/", h.list) // ?user_id=&limit=
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	sh, err := h.service.Open(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, sh)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	var req CloseRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	sh, err := h.service.Close(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, sh)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	sh, err := h.service.Current(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, sh)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := web.ParseID("user_id", raw)
		if err != nil {
			web.Error(w, r, err)
			return
		}
		userID = &id
	}
	limit, err := web.QueryInt(r, "limit", 50)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	shifts, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, shifts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	sh, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, sh)
}
