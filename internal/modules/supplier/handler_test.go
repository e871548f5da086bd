package supplier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type memRepo struct{ rows map[uuid.UUID]*Supplier }

func (m *memRepo) CreateSupplier(_ context.Context, s *Supplier) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memRepo) GetSupplierByID(_ context.Context, id uuid.UUID) (*Supplier, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFoundf("supplier not found")
	}
	return s, nil
}

func (m *memRepo) ListSuppliers(_ context.Context, activeOnly bool) ([]*Supplier, error) {
	out := []*Supplier{}
	for _, s := range m.rows {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memRepo) UpdateSupplier(_ context.Context, s *Supplier) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memRepo) DeleteSupplier(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFoundf("supplier %s not found", id)
	}
	delete(m.rows, id)
	return nil
}

func newRouter(role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := web.WithIdentity(req.Context(), web.Identity{UserID: uuid.New(), Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(NewService(&memRepo{rows: map[uuid.UUID]*Supplier{}})).RegisterRoutes(r)
	return r
}

func TestSupplierLifecycle(t *testing.T) {
	router := newRouter(web.RoleManager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(`{"name":"Bean Co","contact_name":"Jo"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Supplier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.True(t, created.IsActive)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/suppliers/"+created.ID.String(), strings.NewReader(`{"name":"Bean Co","is_active":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers?active=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var active []Supplier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&active))
	assert.Empty(t, active)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/suppliers/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSupplierRequiresNameAndManager(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(web.RoleManager).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(web.RoleCashier).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
