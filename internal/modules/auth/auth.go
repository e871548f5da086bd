package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/modules/user"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	ParseToken(token string) (web.Identity, error)
	// Identify checks the token and then the account behind it: the user must
	// still exist and be active, and the role is taken from the stored user.
	Identify(ctx context.Context, token string) (web.Identity, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Session is returned on a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt int64      `json:"expires_at"`
	User      *user.User `json:"user"`
}
