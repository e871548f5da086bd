package pos

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Handler exposes POS payment endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// OrderRoutes adds payment routes under an order router mounted at /orders.
func (h *Handler) OrderRoutes(r chi.Router) {
	cashiers := web.RequireRole(web.RoleManager, web.RoleCashier)
	r.With(cashiers).Post("/{id}/payments", h.pay)          // POST /orders/{id}/payments
	r.With(cashiers).Get("/{id}/payments", h.listPayments) // GET  /orders/{id}/payments
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(web.RequireRole(web.RoleManager)).Post("/payments/{id}/refund", h.refund)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	orderID, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req PayRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.Pay(r.Context(), orderID, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	orderID, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	payments, err := h.service.ListPayments(r.Context(), orderID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, payments)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req RefundRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.Refund(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}
