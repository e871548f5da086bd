package customer

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// Service defines customer business logic.
type Service interface {
	Create(ctx context.Context, req Request) (*Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, search string) ([]*Customer, error)
	Update(ctx context.Context, id uuid.UUID, req Request) (*Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Orders(ctx context.Context, id uuid.UUID) ([]*OrderSummary, error)
}

// Request holds the editable fields of a customer.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (req *Request) normalize() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return apperr.Invalidf("name is required")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return apperr.Invalidf("invalid email %q", req.Email)
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req Request) (*Customer, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	c := &Customer{
		ID:      uuid.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, search string) ([]*Customer, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req Request) (*Customer, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.Notes = req.Notes
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Orders(ctx context.Context, id uuid.UUID) ([]*OrderSummary, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, id)
}
