package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

const minPasswordLength = 8

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Role = web.RoleAdmin
	user, err := newUser(req)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateFirstUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperr.Forbiddenf("registration is closed; ask an administrator for an account")
	}
	return user, nil
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	user, err := newUser(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// newUser validates req and hashes its password.
func newUser(req CreateUserRequest) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Invalidf("invalid email: %q", req.Email)
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	role := strings.ToLower(req.Role)
	if role == "" {
		role = web.RoleCashier
	}
	if !web.ValidRole(role) {
		return nil, apperr.Invalidf("invalid role: %s", req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
	}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context, role string) ([]*User, error) {
	if role != "" && !web.ValidRole(role) {
		return nil, apperr.Invalidf("invalid role: %s", role)
	}
	return s.repo.ListUsers(ctx, role)
}

func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		role := strings.ToLower(*req.Role)
		if !web.ValidRole(role) {
			return nil, apperr.Invalidf("invalid role: %s", *req.Role)
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}
