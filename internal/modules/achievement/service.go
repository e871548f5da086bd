package achievement

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines gamification logic.
type Service interface {
	Create(ctx context.Context, req Request) (*Achievement, error)
	Get(ctx context.Context, id uuid.UUID) (*Achievement, error)
	List(ctx context.Context) ([]*Achievement, error)
	Update(ctx context.Context, id uuid.UUID, req Request) (*Achievement, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Evaluate awards every achievement the user now qualifies for and
	// returns the newly earned ones.
	Evaluate(ctx context.Context, userID uuid.UUID) ([]*Achievement, error)
	// Mine lists the caller's earned achievements.
	Mine(ctx context.Context) ([]*Achievement, error)
	Leaderboard(ctx context.Context, rg web.Range, limit int) ([]*Standing, error)
}

type service struct {
	repo   Repository
	events events.Publisher
	log    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, log *slog.Logger) Service {
	return &service{repo: repo, events: publisher, log: log}
}

var codePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func validate(req Request) (Request, error) {
	req.Code = strings.ToLower(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	if !codePattern.MatchString(req.Code) {
		return req, apperr.Invalidf("code must be a lowercase slug")
	}
	if req.Name == "" {
		return req, apperr.Invalidf("name is required")
	}
	switch req.Metric {
	case MetricOrdersCount, MetricSalesTotal, MetricItemsSold:
	default:
		return req, apperr.Invalidf("unknown metric %q", req.Metric)
	}
	if !req.Threshold.IsPositive() {
		return req, apperr.Invalidf("threshold must be > 0")
	}
	if req.Points < 0 {
		return req, apperr.Invalidf("points cannot be negative")
	}
	return req, nil
}

func (s *service) Create(ctx context.Context, req Request) (*Achievement, error) {
	req, err := validate(req)
	if err != nil {
		return nil, err
	}
	a := &Achievement{
		ID:          uuid.New(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Metric:      req.Metric,
		Threshold:   req.Threshold,
		Points:      req.Points,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Achievement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Achievement, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req Request) (*Achievement, error) {
	req, err := validate(req)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Code = req.Code
	a.Name = req.Name
	a.Description = req.Description
	a.Metric = req.Metric
	a.Threshold = req.Threshold
	a.Points = req.Points
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// qualifying returns the achievements whose threshold m meets.
func qualifying(m Metrics, candidates []*Achievement) []*Achievement {
	var met []*Achievement
	for _, a := range candidates {
		if m.Value(a.Metric).GreaterThanOrEqual(a.Threshold) {
			met = append(met, a)
		}
	}
	return met
}

func (s *service) Evaluate(ctx context.Context, userID uuid.UUID) ([]*Achievement, error) {
	candidates, err := s.repo.Unearned(ctx, userID)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	m, err := s.repo.Metrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var earned []*Achievement
	for _, a := range qualifying(m, candidates) {
		added, err := s.repo.Award(ctx, userID, a.ID)
		if err != nil {
			return earned, err
		}
		if !added {
			continue
		}
		earned = append(earned, a)
		s.log.Info("achievement unlocked", "user_id", userID, "code", a.Code)
		s.events.Publish(ctx, events.Event{
			Type:   events.AchievementUnlocked,
			Entity: "achievement",
			ID:     a.ID.String(),
			UserID: userID.String(),
		})
	}
	return earned, nil
}

func (s *service) Mine(ctx context.Context) ([]*Achievement, error) {
	id := web.ActorID(ctx)
	if id == nil {
		return nil, apperr.Unauthorizedf("authentication required")
	}
	return s.repo.Earned(ctx, *id)
}

func (s *service) Leaderboard(ctx context.Context, rg web.Range, limit int) ([]*Standing, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.Leaderboard(ctx, rg.From, rg.To, limit)
}
