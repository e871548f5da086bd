package achievement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for achievements.
type Repository interface {
	Create(ctx context.Context, a *Achievement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Achievement, error)
	List(ctx context.Context) ([]*Achievement, error)
	Update(ctx context.Context, a *Achievement) error
	Delete(ctx context.Context, id uuid.UUID) error

	Metrics(ctx context.Context, userID uuid.UUID) (Metrics, error)
	// Unearned lists achievements the user does not hold yet.
	Unearned(ctx context.Context, userID uuid.UUID) ([]*Achievement, error)
	// Award records the achievement for the user. It reports false when the
	// user already held it.
	Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	Earned(ctx context.Context, userID uuid.UUID) ([]*Achievement, error)
	// Leaderboard ranks users on points, then on sales between from and to.
	Leaderboard(ctx context.Context, from, to time.Time, limit int) ([]*Standing, error)
}
