package backup

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// maxScript caps the restore body.
const maxScript = 64 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/backup", func(r chi.Router) {
		r.Use(web.RequireRole(web.RoleAdmin))
		r.Get("/export", h.export)
		r.Post("/restore", h.restore)
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	// Buffer so a failed dump still gets a JSON error.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		web.Error(w, r, err)
		return
	}
	name := fmt.Sprintf("cafepos-backup-%s.sql", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/sql")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	script, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScript))
	if err != nil {
		web.Error(w, r, apperr.Invalidf("read backup: %v", err))
		return
	}
	res, err := h.service.Restore(r.Context(), script)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, res)
}
