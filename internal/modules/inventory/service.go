package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// Service defines manual stock control and the stock ledger.
type Service interface {
	Adjust(ctx context.Context, req AdjustRequest) (*LogEntry, error)
	ListLogs(ctx context.Context, f LogFilter) ([]*LogEntry, error)
	LowStock(ctx context.Context) ([]*LowStockItem, error)
}

// AdjustRequest is a manual stock correction.
type AdjustRequest struct {
	ItemType string          `json:"item_type"`
	ItemID   uuid.UUID       `json:"item_id"`
	Delta    decimal.Decimal `json:"delta"`
	Reason   string          `json:"reason"`
	Notes    string          `json:"notes"`
}

type service struct {
	repo   Repository
	events events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, events: publisher}
}

func manualReason(reason string) bool {
	switch reason {
	case ReasonAdjustment, ReasonWaste, ReasonReturn, ReasonPurchase:
		return true
	}
	return false
}

func (s *service) Adjust(ctx context.Context, req AdjustRequest) (*LogEntry, error) {
	if _, err := tableFor(req.ItemType); err != nil {
		return nil, err
	}
	if req.ItemID == uuid.Nil {
		return nil, apperr.Invalidf("item_id is required")
	}
	if req.Delta.IsZero() {
		return nil, apperr.Invalidf("delta must not be zero")
	}
	if req.Reason == "" {
		req.Reason = ReasonAdjustment
	}
	if !manualReason(req.Reason) {
		return nil, apperr.Invalidf("reason %q is not allowed for manual adjustments", req.Reason)
	}

	entry, err := s.repo.Adjust(ctx, Adjustment{
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
		Delta:    req.Delta,
		Reason:   req.Reason,
		UserID:   web.ActorID(ctx),
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.InventoryUpdate, Entity: entry.ItemType, ID: entry.ItemID.String()})
	return entry, nil
}

func (s *service) ListLogs(ctx context.Context, f LogFilter) ([]*LogEntry, error) {
	if f.ItemType != "" {
		if _, err := tableFor(f.ItemType); err != nil {
			return nil, err
		}
	}
	if f.Limit <= 0 {
		f.Limit = defaultLogLimit
	}
	if f.Limit > maxLogLimit {
		f.Limit = maxLogLimit
	}
	return s.repo.ListLogs(ctx, f)
}

func (s *service) LowStock(ctx context.Context) ([]*LowStockItem, error) {
	return s.repo.LowStock(ctx)
}
