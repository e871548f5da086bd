package achievement

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/achievements", func(r chi.Router) {
		r.Get("/me", h.mine)
		r.Group(func(r chi.Router) {
			r.Use(web.RequireRole(web.RoleAdmin))
			r.Post("/", h.create)
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
	r.Get("/leaderboard", h.leaderboard) // ?from=&to=&limit=
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	a, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, a)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req Request
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	a, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		web.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Mine(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, list)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	rg, err := web.QueryRange(r, 30, time.Now().UTC())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	limit, err := web.QueryInt(r, "limit", 10)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	board, err := h.service.Leaderboard(r.Context(), rg, limit)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, board)
}
