package report

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

const defaultDays = 30

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(web.RequireRole(web.RoleManager))
		r.Get("/sales", h.sales)
		r.Get("/sales/daily", h.daily)
		r.Get("/top-products", h.topProducts)
		r.Get("/inventory", h.inventory)
		r.Get("/export/{file}", h.export) // sales.csv, low-stock.pdf, ...
	})
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	rg, err := web.QueryRange(r, defaultDays, time.Now().UTC())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	sum, err := h.service.Sales(r.Context(), rg)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, sum)
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	rg, err := web.QueryRange(r, defaultDays, time.Now().UTC())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	days, err := h.service.Daily(r.Context(), rg)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, days)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	rg, err := web.QueryRange(r, defaultDays, time.Now().UTC())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	limit, err := web.QueryInt(r, "limit", 10)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	top, err := h.service.TopProducts(r.Context(), rg, limit)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, top)
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Inventory(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, v)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	dot := strings.LastIndex(file, ".")
	if dot <= 0 {
		web.Error(w, r, apperr.Invalidf("export must be named <report>.<csv|pdf>"))
		return
	}
	rg, err := web.QueryRange(r, defaultDays, time.Now().UTC())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	f, err := h.service.Export(r.Context(), file[:dot], file[dot+1:], rg)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", f.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Body)
}
