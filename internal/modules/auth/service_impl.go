package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/cafepos/internal/modules/user"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

type service struct {
	userRepo user.Repository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a new auth service signing tokens with secret.
func NewService(userRepo user.Repository, secret string, ttl time.Duration) Service {
	return &service{userRepo: userRepo, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorizedf("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorizedf("invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Forbiddenf("account is disabled")
	}

	expirationTime := s.now().Add(s.ttl)
	c := &claims{
		Role: u.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  s.now().Unix(),
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{Token: tokenString, ExpiresAt: expirationTime.Unix(), User: u}, nil
}

func (s *service) ParseToken(tokenString string) (web.Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return web.Identity{}, apperr.Unauthorizedf("invalid or expired session")
	}
	uid, err := uuid.Parse(c.Subject)
	if err != nil || !web.ValidRole(c.Role) {
		return web.Identity{}, apperr.Unauthorizedf("invalid or expired session")
	}
	return web.Identity{UserID: uid, Role: c.Role}, nil
}

func (s *service) Identify(ctx context.Context, token string) (web.Identity, error) {
	id, err := s.ParseToken(token)
	if err != nil {
		return web.Identity{}, err
	}
	u, err := s.userRepo.GetUserByID(ctx, id.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return web.Identity{}, apperr.Unauthorizedf("invalid or expired session")
	}
	if err != nil {
		return web.Identity{}, err
	}
	if !u.IsActive {
		return web.Identity{}, apperr.Unauthorizedf("account is disabled")
	}
	return web.Identity{UserID: u.ID, Role: u.Role}, nil
}

func (s *service) CurrentUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}
