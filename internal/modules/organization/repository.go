package organization

import "context"

// Repository stores the single organization profile.
type Repository interface {
	Get(ctx context.Context) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
}
