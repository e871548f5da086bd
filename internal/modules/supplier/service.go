package supplier

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type Service interface {
	CreateSupplier(ctx context.Context, req Request) (*Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req Request) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

// Request holds the editable fields of a supplier.
type Request struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	IsActive    *bool  `json:"is_active"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func apply(s *Supplier, req Request) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperr.Invalidf("name is required")
	}
	s.Name = name
	s.ContactName = strings.TrimSpace(req.ContactName)
	s.Email = strings.TrimSpace(req.Email)
	s.Phone = strings.TrimSpace(req.Phone)
	s.Address = req.Address
	s.Notes = req.Notes
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return nil
}

func (s *service) CreateSupplier(ctx context.Context, req Request) (*Supplier, error) {
	sup := &Supplier{ID: uuid.New(), IsActive: true}
	if err := apply(sup, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetSupplierByID(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	return s.repo.ListSuppliers(ctx, activeOnly)
}

func (s *service) UpdateSupplier(ctx context.Context, id uuid.UUID, req Request) (*Supplier, error) {
	sup, err := s.repo.GetSupplierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(sup, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *service) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSupplier(ctx, id)
}
