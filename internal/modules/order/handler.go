package order

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

// RegisterRoutes mounts /orders. Each of mounts may add routes under the
// same prefix, e.g. payments.
func (h *Handler) RegisterRoutes(r chi.Router, mounts ...func(chi.Router)) {
	staff := web.RequireRole(web.RoleManager, web.RoleCashier, web.RoleTechnician, web.RoleCourier)

	r.Route("/orders", func(r chi.Router) {
		r.With(web.RequireRole(web.RoleManager, web.RoleCashier, web.RoleKiosk)).Post("/", h.placeOrder)
		r.With(staff).Get("/", h.listOrders) // ?status=&from=&to=&shift_id=&courier_id=&limit=
		r.With(staff).Get("/number/{number}", h.getByNumber)
		r.With(staff).Get("/{id}", h.getOrder)
		r.With(staff).Patch("/{id}/status", h.updateStatus)
		r.With(web.RequireRole(web.RoleManager, web.RoleCashier)).Patch("/{id}/courier", h.assignCourier)
		for _, mount := range mounts {
			mount(r)
		}
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{Status: Status(q.Get("status"))}
	if raw := q.Get("from"); raw != "" {
		t, err := web.ParseTime("from", raw)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := web.ParseTime("to", raw)
		if err != nil {
			return f, err
		}
		if len(raw) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	if raw := q.Get("shift_id"); raw != "" {
		id, err := web.ParseID("shift_id", raw)
		if err != nil {
			return f, err
		}
		f.ShiftID = &id
	}
	if raw := q.Get("courier_id"); raw != "" {
		id, err := web.ParseID("courier_id", raw)
		if err != nil {
			return f, err
		}
		f.CourierID = &id
	}
	limit, err := web.QueryInt(r, "limit", defaultListLimit)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	orders, err := h.service.ListOrders(r.Context(), f)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req UpdateStatusRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}

func (h *Handler) assignCourier(w http.ResponseWriter, r *http.Request) {
	id, err := web.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req AssignCourierRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	o, err := h.service.AssignCourier(r.Context(), id, req.CourierID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}
