package inventory

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
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/low-stock", h.lowStock)
		r.Group(func(r chi.Router) {
			r.Use(web.RequireRole(web.RoleManager))
			r.Post("/adjust", h.adjust)
			r.Get("/logs", h.listLogs) // ?item_type=&item_id=&reason=&limit=
		})
	})
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	entry, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, entry)
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := LogFilter{ItemType: q.Get("item_type"), Reason: q.Get("reason")}
	if raw := q.Get("item_id"); raw != "" {
		id, err := web.ParseID("item_id", raw)
		if err != nil {
			web.Error(w, r, err)
			return
		}
		f.ItemID = &id
	}
	limit, err := web.QueryInt(r, "limit", defaultLogLimit)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	f.Limit = limit

	logs, err := h.service.ListLogs(r.Context(), f)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, logs)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, items)
}
