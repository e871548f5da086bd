package customer

import (
	"net/http"

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
	r.Route("/customers", func(r chi.Router) {
		r.Use(web.RequireRole(web.RoleCashier, web.RoleManager))
		r.Post("/", h.create)
		r.Get("/", h.list) // ?search=
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.With(web.RequireRole(web.RoleManager)).Delete("/{id}", h.delete)
		r.Get("/{id}/orders", h.orders)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, c)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
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
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
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
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
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

func (h *Handler) orders(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	orders, err := h.service.Orders(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, orders)
}
