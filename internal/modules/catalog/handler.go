package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog. Reads are open to every signed-in role,
// writes need a manager.
func (h *Handler) RegisterRoutes(r chi.Router) {
	manager := web.RequireRole(web.RoleManager)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Get("/{id}", h.getCategory)
		r.With(manager).Post("/", h.createCategory)
		r.With(manager).Put("/{id}", h.updateCategory)
		r.With(manager).Delete("/{id}", h.deleteCategory)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts) // ?category_id=&search=&active=true
		r.Get("/{id}", h.getProduct)
		r.With(manager).Post("/", h.createProduct)
		r.With(manager).Put("/{id}", h.updateProduct)
		r.With(manager).Delete("/{id}", h.deleteProduct)

		r.Get("/{id}/components", h.getRecipe)
		r.With(manager).Put("/{id}/components", h.setRecipe)

		r.Get("/{id}/option-groups", h.listOptionGroups)
		r.With(manager).Post("/{id}/option-groups", h.createOptionGroup)
	})

	r.Route("/option-groups", func(r chi.Router) {
		r.Use(manager)
		r.Put("/{id}", h.updateOptionGroup)
		r.Delete("/{id}", h.deleteOptionGroup)
	})

	r.Route("/components", func(r chi.Router) {
		r.Get("/", h.listComponents)
		r.Get("/{id}", h.getComponent)
		r.With(manager).Post("/", h.createComponent)
		r.With(manager).Put("/{id}", h.updateComponent)
		r.With(manager).Delete("/{id}", h.deleteComponent)
	})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return web.ParseID("id", chi.URLParam(r, "id"))
}

// ── categories ────────────────────────────────────────────────────────────────

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, c)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCategories(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, list)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req CategoryRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		web.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── products ──────────────────────────────────────────────────────────────────

func parseProductFilter(r *http.Request) (ProductFilter, error) {
	q := r.URL.Query()
	f := ProductFilter{Search: q.Get("search")}
	if raw := q.Get("category_id"); raw != "" {
		id, err := web.ParseID("category_id", raw)
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.Invalidf("invalid active: %q", raw)
		}
		f.Active = &active
	}
	return f, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilter(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	list, err := h.service.ListProducts(r.Context(), f)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, list)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req ProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		web.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	lines, err := h.service.GetRecipe(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, lines)
}

func (h *Handler) setRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req struct {
		Components []RecipeLineRequest `json:"components"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	lines, err := h.service.SetRecipe(r.Context(), id, req.Components)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, lines)
}

// ── option groups ─────────────────────────────────────────────────────────────

func (h *Handler) listOptionGroups(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	groups, err := h.service.ListOptionGroups(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, groups)
}

func (h *Handler) createOptionGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req OptionGroupRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	g, err := h.service.CreateOptionGroup(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, g)
}

func (h *Handler) updateOptionGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req OptionGroupRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	g, err := h.service.UpdateOptionGroup(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, g)
}

func (h *Handler) deleteOptionGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	if err := h.service.DeleteOptionGroup(r.Context(), id); err != nil {
		web.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── components ────────────────────────────────────────────────────────────────

func (h *Handler) createComponent(w http.ResponseWriter, r *http.Request) {
	var req ComponentRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.CreateComponent(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, c)
}

func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListComponents(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, list)
}

func (h *Handler) getComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.GetComponent(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
}

func (h *Handler) updateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	var req ComponentRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateComponent(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, c)
}

func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	if err := h.service.DeleteComponent(r.Context(), id); err != nil {
		web.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
