package shift

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines shift business logic. Open, Close and Current act on the
// caller's own shift.
type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Shift, error)
	Close(ctx context.Context, req CloseRequest) (*Shift, error)
	Current(ctx context.Context) (*Shift, error)
	Get(ctx context.Context, id uuid.UUID) (*Shift, error)
	List(ctx context.Context, userID *uuid.UUID, limit int) ([]*Shift, error)
}

type service struct {
	repo   Repository
	events events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, events: publisher}
}

const maxListLimit = 200

func actor(ctx context.Context) (uuid.UUID, error) {
	id := web.ActorID(ctx)
	if id == nil {
		return uuid.Nil, apperr.Unauthorizedf("authentication required")
	}
	return *id, nil
}

// cashUp records the count at close: expected is the opening float plus cash
// taken, difference is counted minus expected.
func cashUp(s *Shift, cashTaken, closingCash decimal.Decimal, notes string) {
	expected := s.OpeningCash.Add(cashTaken).Round(2)
	closing := closingCash.Round(2)
	s.ClosingCash = decimal.NewNullDecimal(closing)
	s.ExpectedCash = decimal.NewNullDecimal(expected)
	s.CashDifference = decimal.NewNullDecimal(closing.Sub(expected))
	if notes = strings.TrimSpace(notes); notes != "" {
		s.Notes = notes
	}
}

func (s *service) Open(ctx context.Context, req OpenRequest) (*Shift, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.OpeningCash.IsNegative() {
		return nil, apperr.Invalidf("opening_cash cannot be negative")
	}
	sh := &Shift{
		ID:          uuid.New(),
		UserID:      userID,
		OpeningCash: req.OpeningCash.Round(2),
		SalesTotal:  decimal.Zero,
	}
	if err := s.repo.Open(ctx, sh); err != nil {
		return nil, err
	}
	s.publish(ctx, sh)
	return sh, nil
}

func (s *service) Close(ctx context.Context, req CloseRequest) (*Shift, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.ClosingCash.IsNegative() {
		return nil, apperr.Invalidf("closing_cash cannot be negative")
	}
	sh, err := s.repo.Close(ctx, userID, req.ClosingCash, req.Notes)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sh)
	return sh, nil
}

func (s *service) Current(ctx context.Context) (*Shift, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Current(ctx, userID)
}

// Get returns any shift to managers and only their own to other staff.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	caller, _ := web.IdentityFrom(ctx)
	if caller.Role != web.RoleAdmin && caller.Role != web.RoleManager && caller.UserID != sh.UserID {
		return nil, apperr.Forbiddenf("shift belongs to another user")
	}
	return sh, nil
}

func (s *service) List(ctx context.Context, userID *uuid.UUID, limit int) ([]*Shift, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, userID, limit)
}

func (s *service) publish(ctx context.Context, sh *Shift) {
	status := "open"
	if !sh.IsOpen() {
		status = "closed"
	}
	s.events.Publish(ctx, events.Event{
		Type:   events.ShiftUpdate,
		Entity: "shift",
		ID:     sh.ID.String(),
		UserID: sh.UserID.String(),
		Status: status,
	})
}
