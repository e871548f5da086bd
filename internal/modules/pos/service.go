package pos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/order"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines POS payment logic.
type Service interface {
	Pay(ctx context.Context, orderID uuid.UUID, req PayRequest) (*Payment, error)
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	Refund(ctx context.Context, id uuid.UUID, req RefundRequest) (*Payment, error)
}

type service struct {
	repo   Repository
	events events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, events: publisher}
}

func validMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCard, MethodMobileMoney, MethodVoucher:
		return true
	}
	return false
}

// settle checks a payment against the order it pays and fills in the change
// and currency.
func settle(o *OrderRef, p *Payment) error {
	if o.Status == order.StatusCancelled {
		return apperr.Conflictf("order %s is cancelled", o.Number)
	}
	if o.PaymentStatus != order.PaymentUnpaid {
		return apperr.Conflictf("order %s is already %s", o.Number, o.PaymentStatus)
	}
	if p.Amount.LessThan(o.Total) {
		return apperr.Unprocessablef("amount %s is less than the order total %s",
			p.Amount.StringFixed(2), o.Total.StringFixed(2))
	}
	p.ChangeGiven = decimal.Zero
	if p.Method == MethodCash {
		p.ChangeGiven = p.Amount.Sub(o.Total)
	} else if !p.Amount.Equal(o.Total) {
		return apperr.Unprocessablef("%s payments must equal the order total %s", p.Method, o.Total.StringFixed(2))
	}
	p.Currency = o.Currency
	return nil
}

func (s *service) Pay(ctx context.Context, orderID uuid.UUID, req PayRequest) (*Payment, error) {
	method := Method(strings.ToLower(strings.TrimSpace(string(req.Method))))
	if !validMethod(method) {
		return nil, apperr.Invalidf("invalid method %q (allowed: cash, card, mobile_money, voucher)", req.Method)
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Invalidf("amount must be greater than zero")
	}

	p := &Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		CashierID: web.ActorID(ctx),
		Method:    method,
		Amount:    req.Amount.Round(2),
		Reference: strings.TrimSpace(req.Reference),
		Status:    StatusCompleted,
		Notes:     req.Notes,
	}
	o, err := s.repo.Pay(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	return p, nil
}

func (s *service) ListPayments(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) Refund(ctx context.Context, id uuid.UUID, req RefundRequest) (*Payment, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperr.Invalidf("reason is required")
	}
	p, o, err := s.repo.Refund(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	return p, nil
}

func (s *service) publish(ctx context.Context, o *OrderRef) {
	s.events.Publish(ctx, events.Event{
		Type:        events.OrderUpdate,
		OrderID:     o.ID.String(),
		OrderNumber: o.Number,
		Status:      string(o.Status),
	})
}
