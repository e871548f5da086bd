package web

import (
	"context"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// Role names used across the API.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCashier    = "cashier"
	RoleTechnician = "technician"
	RoleCourier    = "courier"
	RoleKiosk      = "kiosk"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCashier, RoleTechnician, RoleCourier, RoleKiosk:
		return true
	}
	return false
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ActorID returns the caller's user id, or nil for anonymous requests.
func ActorID(ctx context.Context) *uuid.UUID {
	id, ok := IdentityFrom(ctx)
	if !ok || id.UserID == uuid.Nil {
		return nil
	}
	uid := id.UserID
	return &uid
}

// RequireRole rejects callers whose role is not listed. Admins always pass.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				Error(w, r, apperr.Unauthorizedf("authentication required"))
				return
			}
			if id.Role != RoleAdmin && !slices.Contains(roles, id.Role) {
				Error(w, r, apperr.Forbiddenf("role %s may not perform this action", id.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
